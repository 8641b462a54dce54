package handler

import (
	"io"
	"net/http"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/webhook"
	"github.com/gin-gonic/gin"
)

// WebhookHandler ingests payment-provider callbacks. The IP throttle runs
// before signature verification so spam costs a map lookup, not an HMAC.
type WebhookHandler struct {
	cfg       config.WebhookConfig
	throttle  *webhook.IPThrottle
	validator *webhook.Validator
}

func NewWebhookHandler(cfg config.WebhookConfig, throttle *webhook.IPThrottle, validator *webhook.Validator) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, throttle: throttle, validator: validator}
}

func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	if !h.throttle.Allow(c.ClientIP()) {
		metrics.WebhookRejects.WithLabelValues("ip_throttle").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "rate limit exceeded"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unreadable body"})
		return
	}

	event, appErr := h.validator.Validate(
		c.GetHeader(h.cfg.SignatureHeader),
		c.GetHeader(h.cfg.TimestampHeader),
		rawBody,
	)
	if appErr != nil {
		// Generic rejection to the vendor; details stay in our logs.
		logger.Warn("webhook rejected",
			"type", appErr.Type, "reason", appErr.Message, "client_ip", c.ClientIP())
		c.JSON(appErr.HTTPStatus, gin.H{"success": false, "message": "webhook rejected"})
		return
	}

	logger.Info("webhook accepted", "event_type", event.Type)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
