package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// Wallet operations gated by the guards, used as rate-limit keys.
const (
	OpDeposit  = "deposit"
	OpTip      = "tip"
	OpWithdraw = "withdraw"
	OpFaucet   = "faucet"
	OpRain     = "rain"
)

// WalletGuard composes the per-operation admission checks that run before
// any wallet business logic. Every rejection is side-effect free.
type WalletGuard struct {
	cfg     *config.Config
	limiter *ratelimit.Limiter
	clock   clockwork.Clock
}

func NewWalletGuard(cfg *config.Config, limiter *ratelimit.Limiter, clock clockwork.Clock) *WalletGuard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WalletGuard{cfg: cfg, limiter: limiter, clock: clock}
}

// DepositGuard applies the hourly deposit budget. Requires AuthMiddleware.
func (g *WalletGuard) DepositGuard() gin.HandlerFunc {
	return g.rateLimitGuard(OpDeposit, g.cfg.Limits.DepositsPerHour, time.Hour)
}

// TipGuard applies the per-minute tip/transfer budget.
func (g *WalletGuard) TipGuard() gin.HandlerFunc {
	return g.rateLimitGuard(OpTip, g.cfg.Limits.TipsPerMinute, time.Minute)
}

// FaucetGuard applies the daily faucet-claim budget.
func (g *WalletGuard) FaucetGuard() gin.HandlerFunc {
	return g.rateLimitGuard(OpFaucet, g.cfg.Limits.FaucetClaimsPerDay, 24*time.Hour)
}

// RainGuard enforces the rain cooldown: one rain per cooldown window.
func (g *WalletGuard) RainGuard() gin.HandlerFunc {
	cooldown := time.Duration(g.cfg.Economy.RainSettings.CooldownSeconds) * time.Second
	return g.rateLimitGuard(OpRain, 1, cooldown)
}

// WithdrawGuard gates withdrawals behind the feature flag, the minimum
// account age, and the hourly budget, in that order.
func (g *WalletGuard) WithdrawGuard() gin.HandlerFunc {
	limitGuard := g.rateLimitGuard(OpWithdraw, g.cfg.Limits.WithdrawalsPerHour, time.Hour)
	minAge := time.Duration(g.cfg.Limits.MinAccountAgeHours) * time.Hour
	return func(c *gin.Context) {
		if !g.cfg.Limits.AllowCryptoWithdrawals {
			metrics.GuardRejects.WithLabelValues("withdraw", "feature_disabled").Inc()
			c.JSON(http.StatusForbidden, failureBody("withdrawals are not enabled", "FORBIDDEN"))
			c.Abort()
			return
		}
		user := UserFromContext(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, failureBody("authentication required", "AUTH_FAILED"))
			c.Abort()
			return
		}
		if user.AccountAge(g.clock.Now()) < minAge {
			metrics.GuardRejects.WithLabelValues("withdraw", "account_too_young").Inc()
			c.JSON(http.StatusForbidden, failureBody("account too new for withdrawals", "FORBIDDEN"))
			c.Abort()
			return
		}
		limitGuard(c)
	}
}

func (g *WalletGuard) rateLimitGuard(operation string, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, failureBody("authentication required", "AUTH_FAILED"))
			c.Abort()
			return
		}

		result, err := g.limiter.Check(c.Request.Context(), user.ID, operation, maxAttempts, window)
		if err != nil {
			// A broken limiter store must not admit unmetered traffic.
			logger.LogError(c.Request.Context(), err, "rate limit check failed", "operation", operation)
			c.JSON(http.StatusServiceUnavailable, failureBody("rate limiter unavailable", "INTERNAL_ERROR"))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxAttempts))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.UnixMilli(), 10))

		if !result.Allowed {
			metrics.GuardRejects.WithLabelValues(operation, "rate_limited").Inc()
			c.JSON(http.StatusTooManyRequests, failureBody("rate limit exceeded, try again later", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}
