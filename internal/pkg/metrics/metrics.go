package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	XPGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degentalk_xp_granted_total",
		Help: "XP granted after caps, by action",
	}, []string{"action"})

	DailyCapClamps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degentalk_xp_daily_cap_clamps_total",
		Help: "XP grants reduced by a daily ceiling",
	}, []string{"ceiling"})

	MultiplierViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degentalk_multiplier_violations_total",
		Help: "Multiplier cap violations by reason and enforcement mode",
	}, []string{"reason", "mode"})

	GuardRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degentalk_wallet_guard_rejects_total",
		Help: "Wallet guard rejections",
	}, []string{"guard", "reason"})

	WebhookRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degentalk_webhook_rejects_total",
		Help: "Webhook validation failures by stage",
	}, []string{"stage"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "degentalk_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
