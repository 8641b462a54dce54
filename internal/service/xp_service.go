package service

import (
	"context"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/economy"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// XPService orchestrates one XP grant end to end: calculate, clamp against
// the daily budgets, persist, then re-derive the level from the new total.
type XPService struct {
	cfg       config.EconomyConfig
	calc      *economy.ActionXPCalculator
	sanitizer *economy.MultiplierSanitizer
	levels    *economy.LevelModel
	usage     economy.UsageStore
	users     UserRepo
}

func NewXPService(cfg config.EconomyConfig, usage economy.UsageStore, users UserRepo) (*XPService, error) {
	sanitizer, err := economy.NewMultiplierSanitizer(cfg.XPMultiplierLimits)
	if err != nil {
		return nil, err
	}
	return &XPService{
		cfg:       cfg,
		calc:      economy.NewActionXPCalculator(cfg),
		sanitizer: sanitizer,
		levels:    economy.NewLevelModel(cfg.LevelThresholds()),
		usage:     usage,
		users:     users,
	}, nil
}

func (s *XPService) Levels() *economy.LevelModel { return s.levels }

// AwardAction grants the XP for action with no bonus multipliers. Returns the
// XP granted, the user's new level, and whether they leveled up.
func (s *XPService) AwardAction(ctx context.Context, user *model.User, action string) (int, int, error) {
	return s.AwardActionWithBonus(ctx, user, action, 1.0, 1.0, "")
}

// AwardActionWithBonus grants XP scaled by the sanitized combination of the
// role and forum multipliers. A capped multiplier never fails the award; the
// grant proceeds with whatever value the enforcement mode settled on.
func (s *XPService) AwardActionWithBonus(ctx context.Context, user *model.User, action string, roleMult, forumMult float64, forumID string) (int, int, error) {
	earnedToday, _, err := s.usage.DailyXP(ctx, user.ID)
	if err != nil {
		return 0, 0, err
	}

	base := s.calc.XPForAction(action, earnedToday)
	if base == 0 {
		return 0, s.levels.LevelForXP(user.XP), nil
	}

	grant := base
	if roleMult != 1.0 || forumMult != 1.0 {
		result := s.sanitizer.Sanitize(roleMult, forumMult, economy.SanitizeContext{
			UserID: user.ID, ForumID: forumID, Action: action,
		})
		grant = int(float64(base) * result.FinalMultiplier)
		// The boost stays inside the same budget as its base. Exempt actions
		// skip the clamp: a bonus must never grant less than the flat base.
		if economy.CappedByDailyCeiling(action) {
			grant = economy.ApplyDailyCap(earnedToday, grant, s.cfg.MaxXPPerDay)
		}
	}

	return s.commit(ctx, user, action, grant, 0)
}

// AwardTip converts a received tip into XP under the tip-specific ceiling.
func (s *XPService) AwardTip(ctx context.Context, user *model.User, amount decimal.Decimal) (int, error) {
	_, tipToday, err := s.usage.DailyXP(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	grant := s.calc.XPForTip(amount, tipToday)
	if grant == 0 {
		return 0, nil
	}
	granted, _, err := s.commit(ctx, user, economy.ActionTipped, 0, grant)
	return granted, err
}

func (s *XPService) commit(ctx context.Context, user *model.User, action string, general, tip int) (int, int, error) {
	grant := general + tip
	oldLevel := s.levels.LevelForXP(user.XP)
	newTotal, err := s.users.AddXP(ctx, user.ID, grant)
	if err != nil {
		return 0, 0, err
	}
	if err := s.usage.AddDailyXP(ctx, user.ID, general, tip); err != nil {
		return 0, 0, err
	}
	metrics.XPGranted.WithLabelValues(action).Add(float64(grant))

	newLevel := s.levels.LevelForXP(newTotal)
	if newLevel > oldLevel {
		logger.Info("user leveled up",
			"user_id", user.ID, "from", oldLevel, "to", newLevel, "total_xp", newTotal)
	}
	return grant, newLevel, nil
}

// Progress reports where the user's XP total sits within its level.
func (s *XPService) Progress(user *model.User) economy.Progress {
	return s.levels.ProgressWithinLevel(user.XP)
}
