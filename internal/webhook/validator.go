// Package webhook authenticates inbound payment-provider callbacks before
// any business logic sees them.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/apperrors"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/jonboulle/clockwork"
)

// Event is a validated payment callback.
type Event struct {
	Type   string
	Fields map[string]json.RawMessage
}

// Payment event types the provider can send.
const (
	EventDeposit          = "deposit"
	EventWithdraw         = "withdraw"
	EventInternalTransfer = "internal_transfer"
	EventSwap             = "swap"
)

// requiredFields per event type. A missing field rejects the event with the
// field named, so the provider's support team can act on the error.
var requiredFields = map[string][]string{
	EventDeposit:          {"recordId", "uid", "amount"},
	EventWithdraw:         {"recordId", "uid", "amount"},
	EventInternalTransfer: {"recordId", "fromUid", "toUid", "amount"},
	EventSwap:             {"recordId", "uid", "fromCoin", "toCoin", "amount"},
}

// Validator runs the single-pass validation pipeline: header presence,
// timestamp freshness, HMAC authenticity, then structural checks. It short
// circuits on the first failure and never echoes the secret or the expected
// signature back to the caller.
type Validator struct {
	secret    []byte
	tolerance time.Duration
	clock     clockwork.Clock
}

func NewValidator(cfg config.WebhookConfig, clock clockwork.Clock) *Validator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Validator{
		secret:    []byte(cfg.Secret),
		tolerance: time.Duration(cfg.ToleranceSeconds) * time.Second,
		clock:     clock,
	}
}

// Validate checks one callback. signature and timestamp come from the vendor
// headers; rawBody is the unmodified request body the signature covers.
func (v *Validator) Validate(signature, timestamp string, rawBody []byte) (*Event, *apperrors.AppError) {
	if signature == "" || timestamp == "" {
		metrics.WebhookRejects.WithLabelValues("presence").Inc()
		return nil, apperrors.NewValidation("missing signature or timestamp header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		metrics.WebhookRejects.WithLabelValues("presence").Inc()
		return nil, apperrors.NewValidation("malformed timestamp header")
	}

	// Freshness bounds the replay window in both directions; a future-skewed
	// timestamp is as suspect as a stale one.
	age := v.clock.Now().Sub(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}
	if age > v.tolerance {
		metrics.WebhookRejects.WithLabelValues("freshness").Inc()
		return nil, apperrors.NewValidation("timestamp outside tolerance window")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, supplied) {
		metrics.WebhookRejects.WithLabelValues("signature").Inc()
		return nil, apperrors.NewAuthFailed("webhook signature mismatch")
	}

	return v.parseEvent(rawBody)
}

func (v *Validator) parseEvent(rawBody []byte) (*Event, *apperrors.AppError) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		metrics.WebhookRejects.WithLabelValues("structure").Inc()
		return nil, apperrors.NewValidation("webhook body is not valid JSON")
	}

	var eventType string
	if raw, ok := payload["type"]; ok {
		_ = json.Unmarshal(raw, &eventType)
	}

	required, ok := requiredFields[eventType]
	if !ok {
		metrics.WebhookRejects.WithLabelValues("structure").Inc()
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown webhook event type %q", eventType))
	}

	for _, field := range required {
		if _, present := payload[field]; !present {
			metrics.WebhookRejects.WithLabelValues("structure").Inc()
			return nil, apperrors.NewValidation(fmt.Sprintf("%s event missing required field %q", eventType, field))
		}
	}

	return &Event{Type: eventType, Fields: payload}, nil
}
