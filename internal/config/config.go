package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	TrialDays                        int    `mapstructure:"TRIAL_DAYS"`
	PaystackPlanCodeStarter          string `mapstructure:"PAYSTACK_PLAN_CODE_STARTER"`
	PaystackPlanCodePro              string `mapstructure:"PAYSTACK_PLAN_CODE_PRO"`
	PaystackPlanCodeEnterprise       string `mapstructure:"PAYSTACK_PLAN_CODE_ENTERPRISE"`
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("TRIAL_DAYS", 14)

	v.BindEnv("PORT")
	v.BindEnv("GIN_MODE")
	v.BindEnv("FIREBASE_PROJECT_ID")
	v.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	v.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	v.BindEnv("CLIENT_URL")
	v.BindEnv("TRIAL_DAYS")
	v.BindEnv("PAYSTACK_PLAN_CODE_STARTER")
	v.BindEnv("PAYSTACK_PLAN_CODE_PRO")
	v.BindEnv("PAYSTACK_PLAN_CODE_ENTERPRISE")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.TrialDays < 0 {
		return nil, errors.New("TRIAL_DAYS must not be negative")
	}

	return &cfg, nil
}
