package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-webhook-secret"

func newTestValidator() (*Validator, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	v := NewValidator(config.WebhookConfig{
		Secret:           testSecret,
		ToleranceSeconds: 300,
	}, clock)
	return v, clock
}

func sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func depositBody() []byte {
	return []byte(`{"type":"deposit","recordId":"r1","uid":"u1","amount":"12.5"}`)
}

func TestValidateAcceptsSignedDeposit(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()
	ts := fmt.Sprintf("%d", clock.Now().Unix())

	event, appErr := v.Validate(sign(ts, body), ts, body)
	require.Nil(t, appErr)
	assert.Equal(t, EventDeposit, event.Type)
	assert.Contains(t, event.Fields, "recordId")
}

func TestValidateMissingHeaders(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()
	ts := fmt.Sprintf("%d", clock.Now().Unix())

	_, appErr := v.Validate("", ts, body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

	_, appErr = v.Validate(sign(ts, body), "", body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

	_, appErr = v.Validate(sign(ts, body), "not-a-number", body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

// A valid signature over a 301-second-old timestamp is a replay; the same
// signature at 299 seconds is inside the tolerance window.
func TestValidateReplayWindow(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()

	ts := fmt.Sprintf("%d", clock.Now().Add(-301*time.Second).Unix())
	_, appErr := v.Validate(sign(ts, body), ts, body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

	ts = fmt.Sprintf("%d", clock.Now().Add(-299*time.Second).Unix())
	event, appErr := v.Validate(sign(ts, body), ts, body)
	require.Nil(t, appErr)
	assert.Equal(t, EventDeposit, event.Type)
}

func TestValidateRejectsFutureSkew(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()

	ts := fmt.Sprintf("%d", clock.Now().Add(301*time.Second).Unix())
	_, appErr := v.Validate(sign(ts, body), ts, body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestValidateBadSignature(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()
	ts := fmt.Sprintf("%d", clock.Now().Unix())

	_, appErr := v.Validate(sign(ts, []byte("other body")), ts, body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)

	_, appErr = v.Validate("zz-not-hex", ts, body)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestValidateTamperedBody(t *testing.T) {
	v, clock := newTestValidator()
	body := depositBody()
	ts := fmt.Sprintf("%d", clock.Now().Unix())
	sig := sign(ts, body)

	tampered := []byte(`{"type":"deposit","recordId":"r1","uid":"u1","amount":"9999"}`)
	_, appErr := v.Validate(sig, ts, tampered)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestValidateStructure(t *testing.T) {
	v, clock := newTestValidator()
	ts := fmt.Sprintf("%d", clock.Now().Unix())

	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"unknown type", `{"type":"airdrop","recordId":"r1"}`, "unknown webhook event type"},
		{"missing field", `{"type":"deposit","recordId":"r1","uid":"u1"}`, `missing required field "amount"`},
		{"transfer missing toUid", `{"type":"internal_transfer","recordId":"r1","fromUid":"u1","amount":"5"}`, `missing required field "toUid"`},
		{"not json", `not-json`, "not valid JSON"},
		{"no type", `{"recordId":"r1"}`, "unknown webhook event type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := []byte(tc.body)
			_, appErr := v.Validate(sign(ts, body), ts, body)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Contains(t, appErr.Message, tc.wantMsg)
		})
	}
}

func TestValidateSwapEvent(t *testing.T) {
	v, clock := newTestValidator()
	ts := fmt.Sprintf("%d", clock.Now().Unix())
	body := []byte(`{"type":"swap","recordId":"r1","uid":"u1","fromCoin":"BTC","toCoin":"DGT","amount":"1"}`)

	event, appErr := v.Validate(sign(ts, body), ts, body)
	require.Nil(t, appErr)
	assert.Equal(t, EventSwap, event.Type)
}

func TestIPThrottle(t *testing.T) {
	throttle := NewIPThrottle(10)

	// Burst headroom equals the per-minute budget.
	for i := 0; i < 10; i++ {
		require.True(t, throttle.Allow("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, throttle.Allow("1.2.3.4"))

	// Other IPs are unaffected.
	assert.True(t, throttle.Allow("5.6.7.8"))
}

func TestIPThrottleSweepEvictsIdleEntries(t *testing.T) {
	throttle := NewIPThrottle(10)

	throttle.Allow("1.2.3.4")
	throttle.Allow("5.6.7.8")

	throttle.Sweep(time.Now().Add(time.Minute))

	throttle.mu.Lock()
	remaining := len(throttle.entries)
	throttle.mu.Unlock()
	assert.Zero(t, remaining)

	// An evicted IP restarts with full burst headroom.
	for i := 0; i < 10; i++ {
		require.True(t, throttle.Allow("1.2.3.4"), "request %d", i+1)
	}
}
