package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. BANKCARDS_DATABASE_URL.
const EnvPrefix = "BANKCARDS"

var defaults = map[string]interface{}{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.log_file":                 "",
	"server.log_max_size_mb":          100,
	"server.log_max_backups":          5,
	"server.log_max_age_days":         30,
	"server.read_timeout_seconds":     15,
	"server.write_timeout_seconds":    15,
	"server.shutdown_timeout_seconds": 10,

	"database.url":                       "",
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"database.auto_migrate":              true,

	"auth.jwt_secret":               "",
	"auth.token_lifetime_minutes":   60,
	"auth.bcrypt_cost":              10,
	"auth.bootstrap_admin_username": "",
	"auth.bootstrap_admin_email":    "",
	"auth.bootstrap_admin_password": "",

	"cards.encryption_key":    "",
	"cards.user_page_size":    10,
	"cards.default_page_size": 20,
	"cards.max_page_size":     100,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	a := cfg.Auth
	if a.BootstrapAdminUsername != "" && (a.BootstrapAdminEmail == "" || a.BootstrapAdminPassword == "") {
		return errors.New("config validation failed: bootstrap admin requires email and password")
	}
	return nil
}
