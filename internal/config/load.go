package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the JOURNAL_ prefix with underscores
// for nesting (e.g. JOURNAL_LLM_GEMINI_API_KEY maps to llm.gemini_api_key).
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fe.Namespace())
			}
			return nil, fmt.Errorf("config validation failed for: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for settings that have sane
// out-of-the-box behavior. Secrets and connection strings have no defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Registered empty so AutomaticEnv can populate them during Unmarshal;
	// validation still rejects the empty values.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("llm.model_name", "gemini-2.0-flash-lite")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.min_request_interval_ms", 12000)
	v.SetDefault("llm.retry_backoff_base_ms", 5000)
	v.SetDefault("llm.rate_limit_backoff_base_ms", 10000)
	v.SetDefault("llm.request_timeout_ms", 30000)

	v.SetDefault("quota.free_daily_limit", 10)
	v.SetDefault("quota.pro_daily_limit", 100)
	v.SetDefault("quota.elite_daily_limit", 500)
}
