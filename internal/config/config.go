package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	SessionHeader string `mapstructure:"session_header"`
	AdminKey      string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// EconomyConfig holds every tunable of the DGT/XP economy. Loaded once at
// startup, validated, and treated as immutable afterwards.
type EconomyConfig struct {
	DGTToUSD         float64 `mapstructure:"dgt_to_usd"`
	XPPerDGT         int     `mapstructure:"xp_per_dgt"`
	MaxXPPerDay      int     `mapstructure:"max_xp_per_day"`
	MaxTipXPPerDay   int     `mapstructure:"max_tip_xp_per_day"`
	MinTipDGT        float64 `mapstructure:"min_tip_dgt"`
	TipFeePercentage float64 `mapstructure:"tip_fee_percentage"`
	FaucetRewardXP   int     `mapstructure:"faucet_reward_xp"`
	FaucetRewardDGT  float64 `mapstructure:"faucet_reward_dgt"`
	MinWithdrawalDGT float64 `mapstructure:"min_withdrawal_dgt"`

	FirstPostXP        int `mapstructure:"first_post_xp"`
	DailyPostXP        int `mapstructure:"daily_post_xp"`
	ReactionReceivedXP int `mapstructure:"reaction_received_xp"`

	// Cumulative XP thresholds for levels 2..10, keyed by level. Keys are
	// strings because that is what viper hands back for YAML/env maps; use
	// LevelThresholds for the parsed form. Levels above 10 use the closed-form
	// curve level^2*250-250 and the map boundary must agree with it.
	LevelXPMap map[string]int `mapstructure:"level_xp_map"`

	ReferralRewards    ReferralRewards    `mapstructure:"referral_rewards"`
	RainSettings       RainSettings       `mapstructure:"rain_settings"`
	XPMultiplierLimits XPMultiplierLimits `mapstructure:"xp_multiplier_limits"`
}

type RewardPair struct {
	DGT float64 `mapstructure:"dgt"`
	XP  int     `mapstructure:"xp"`
}

type ReferralRewards struct {
	Referee  RewardPair `mapstructure:"referee"`
	Referrer RewardPair `mapstructure:"referrer"`
}

type RainSettings struct {
	MinAmount       float64 `mapstructure:"min_amount"`
	MaxRecipients   int     `mapstructure:"max_recipients"`
	CooldownSeconds int     `mapstructure:"cooldown_seconds"`
}

type XPMultiplierLimits struct {
	MaxTotalMultiplier float64 `mapstructure:"max_total_multiplier"`
	MaxRoleMultiplier  float64 `mapstructure:"max_role_multiplier"`
	MaxForumMultiplier float64 `mapstructure:"max_forum_multiplier"`
	StackingRule       string  `mapstructure:"stacking_rule"`
	EnforcementMode    string  `mapstructure:"enforcement_mode"`
}

type LimitsConfig struct {
	DepositsPerHour     int     `mapstructure:"deposits_per_hour"`
	TipsPerMinute       int     `mapstructure:"tips_per_minute"`
	WithdrawalsPerHour  int     `mapstructure:"withdrawals_per_hour"`
	FaucetClaimsPerDay  int     `mapstructure:"faucet_claims_per_day"`
	MaxDGTTransfer      float64 `mapstructure:"max_dgt_transfer"`
	MaxDepositUSD       float64 `mapstructure:"max_deposit_usd"`
	AdminCreditDailyCap float64 `mapstructure:"admin_credit_daily_cap"`
	MinAccountAgeHours  int     `mapstructure:"min_account_age_hours"`

	AllowCryptoWithdrawals bool `mapstructure:"allow_crypto_withdrawals"`
}

type WebhookConfig struct {
	// Secret must come from the environment (DEGENTALK_WEBHOOK_SECRET); a
	// missing secret is a startup failure, never a per-request one.
	Secret            string `mapstructure:"secret"`
	SignatureHeader   string `mapstructure:"signature_header"`
	TimestampHeader   string `mapstructure:"timestamp_header"`
	ToleranceSeconds  int    `mapstructure:"tolerance_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

const (
	StackingAdditive        = "additive"
	StackingMultiplicative  = "multiplicative"
	StackingBestOf          = "best_of"
	StackingWeightedAverage = "weighted_average"

	EnforcementStrict  = "strict"
	EnforcementWarn    = "warn"
	EnforcementLogOnly = "log_only"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. DEGENTALK_WEBHOOK_SECRET
	viper.SetEnvPrefix("degentalk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.session_header", "X-Session-Token")

	viper.SetDefault("economy.dgt_to_usd", 0.10)
	viper.SetDefault("economy.xp_per_dgt", 10)
	viper.SetDefault("economy.max_xp_per_day", 500)
	viper.SetDefault("economy.max_tip_xp_per_day", 200)
	viper.SetDefault("economy.min_tip_dgt", 0.1)
	viper.SetDefault("economy.tip_fee_percentage", 2.0)
	viper.SetDefault("economy.faucet_reward_xp", 10)
	viper.SetDefault("economy.faucet_reward_dgt", 0.5)
	viper.SetDefault("economy.min_withdrawal_dgt", 50.0)
	viper.SetDefault("economy.first_post_xp", 50)
	viper.SetDefault("economy.daily_post_xp", 10)
	viper.SetDefault("economy.reaction_received_xp", 2)
	viper.SetDefault("economy.level_xp_map", map[string]int{
		"2": 100, "3": 350, "4": 750, "5": 1300,
		"6": 2000, "7": 2850, "8": 3850, "9": 5000, "10": 6300,
	})
	viper.SetDefault("economy.referral_rewards.referee.dgt", 5.0)
	viper.SetDefault("economy.referral_rewards.referee.xp", 25)
	viper.SetDefault("economy.referral_rewards.referrer.dgt", 10.0)
	viper.SetDefault("economy.referral_rewards.referrer.xp", 50)
	viper.SetDefault("economy.rain_settings.min_amount", 10.0)
	viper.SetDefault("economy.rain_settings.max_recipients", 25)
	viper.SetDefault("economy.rain_settings.cooldown_seconds", 300)
	viper.SetDefault("economy.xp_multiplier_limits.max_total_multiplier", 3.5)
	viper.SetDefault("economy.xp_multiplier_limits.max_role_multiplier", 2.5)
	viper.SetDefault("economy.xp_multiplier_limits.max_forum_multiplier", 2.0)
	viper.SetDefault("economy.xp_multiplier_limits.stacking_rule", StackingAdditive)
	viper.SetDefault("economy.xp_multiplier_limits.enforcement_mode", EnforcementStrict)

	viper.SetDefault("limits.deposits_per_hour", 10)
	viper.SetDefault("limits.tips_per_minute", 5)
	viper.SetDefault("limits.withdrawals_per_hour", 3)
	viper.SetDefault("limits.faucet_claims_per_day", 1)
	viper.SetDefault("limits.max_dgt_transfer", 10000.0)
	viper.SetDefault("limits.max_deposit_usd", 5000.0)
	viper.SetDefault("limits.admin_credit_daily_cap", 50000.0)
	viper.SetDefault("limits.min_account_age_hours", 24)
	viper.SetDefault("limits.allow_crypto_withdrawals", false)

	viper.SetDefault("webhook.signature_header", "Ccpayment-Signature")
	viper.SetDefault("webhook.timestamp_header", "Ccpayment-Timestamp")
	viper.SetDefault("webhook.tolerance_seconds", 300)
	viper.SetDefault("webhook.requests_per_minute", 100)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

// Validate enforces the economy schema. Any failure here aborts startup; a
// half-validated economy config must never serve traffic.
func (c *Config) Validate() error {
	e := &c.Economy

	positives := []struct {
		name string
		ok   bool
	}{
		{"economy.dgt_to_usd", e.DGTToUSD > 0},
		{"economy.xp_per_dgt", e.XPPerDGT > 0},
		{"economy.max_xp_per_day", e.MaxXPPerDay > 0},
		{"economy.max_tip_xp_per_day", e.MaxTipXPPerDay > 0},
		{"economy.min_tip_dgt", e.MinTipDGT > 0},
		{"economy.tip_fee_percentage", e.TipFeePercentage > 0},
		{"economy.faucet_reward_xp", e.FaucetRewardXP > 0},
		{"economy.faucet_reward_dgt", e.FaucetRewardDGT > 0},
		{"economy.min_withdrawal_dgt", e.MinWithdrawalDGT > 0},
	}
	for _, p := range positives {
		if !p.ok {
			return fmt.Errorf("config: %s must be positive", p.name)
		}
	}

	if err := ValidateLevelMap(e.LevelThresholds()); err != nil {
		return err
	}

	m := &e.XPMultiplierLimits
	if m.MaxTotalMultiplier < 1.0 || m.MaxRoleMultiplier < 1.0 || m.MaxForumMultiplier < 1.0 {
		return fmt.Errorf("config: multiplier limits must be >= 1.0")
	}
	switch m.StackingRule {
	case StackingAdditive, StackingMultiplicative, StackingBestOf, StackingWeightedAverage:
	default:
		return fmt.Errorf("config: unknown stacking_rule %q", m.StackingRule)
	}
	switch m.EnforcementMode {
	case EnforcementStrict, EnforcementWarn, EnforcementLogOnly:
	default:
		return fmt.Errorf("config: unknown enforcement_mode %q", m.EnforcementMode)
	}

	if c.Webhook.Secret == "" {
		return fmt.Errorf("config: webhook.secret is required (set DEGENTALK_WEBHOOK_SECRET)")
	}
	if c.Webhook.ToleranceSeconds <= 0 {
		return fmt.Errorf("config: webhook.tolerance_seconds must be positive")
	}

	return nil
}

// LevelThresholds returns the level map with integer keys. Unparseable keys
// are dropped; ValidateLevelMap then reports them as missing levels.
func (e *EconomyConfig) LevelThresholds() map[int]int {
	out := make(map[int]int, len(e.LevelXPMap))
	for k, v := range e.LevelXPMap {
		var lvl int
		if _, err := fmt.Sscanf(k, "%d", &lvl); err == nil {
			out[lvl] = v
		}
	}
	return out
}

// ValidateLevelMap checks the thresholds are complete, strictly increasing,
// and sit below the closed-form curve that takes over at level 11. Without
// this the progress denominator in the level model could hit zero.
func ValidateLevelMap(levelMap map[int]int) error {
	if len(levelMap) == 0 {
		return fmt.Errorf("config: economy.level_xp_map is required")
	}
	prev := 0
	for lvl := 2; lvl <= 10; lvl++ {
		xp, ok := levelMap[lvl]
		if !ok {
			return fmt.Errorf("config: level_xp_map missing level %d", lvl)
		}
		if xp <= prev {
			return fmt.Errorf("config: level_xp_map threshold for level %d (%d) not strictly increasing", lvl, xp)
		}
		prev = xp
	}
	formula11 := 11*11*250 - 250
	if levelMap[10] >= formula11 {
		return fmt.Errorf("config: level_xp_map[10]=%d must be below the level-11 curve value %d", levelMap[10], formula11)
	}
	return nil
}
