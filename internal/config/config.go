package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Quota    QuotaConfig    `mapstructure:"quota"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. Access tokens are minted by
// the external auth provider; this service only verifies them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains all settings for the upstream generative-language API
// and the gateway's pacing and retry policy.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// BaseURL is the generateContent endpoint prefix, without a trailing slash.
	BaseURL   string `mapstructure:"base_url"   validate:"required,url"`
	ModelName string `mapstructure:"model_name" validate:"required"`

	// MaxRetries is the total number of upstream attempts per logical call.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=1,lte=10"`

	// MinRequestIntervalMs is the minimum spacing between outbound requests
	// from this process, in milliseconds.
	MinRequestIntervalMs int `mapstructure:"min_request_interval_ms" validate:"gte=0"`

	// RetryBackoffBaseMs and RateLimitBackoffBaseMs seed the exponential
	// backoff for transient failures and upstream 429s respectively.
	RetryBackoffBaseMs     int `mapstructure:"retry_backoff_base_ms"      validate:"gte=0"`
	RateLimitBackoffBaseMs int `mapstructure:"rate_limit_backoff_base_ms" validate:"gte=0"`

	// RequestTimeoutMs bounds a single upstream HTTP attempt.
	RequestTimeoutMs int `mapstructure:"request_timeout_ms" validate:"gte=0"`
}

// QuotaConfig contains per-tier daily request ceilings. Zero values fall
// back to the built-in defaults in the quota package.
type QuotaConfig struct {
	FreeDailyLimit  int `mapstructure:"free_daily_limit"  validate:"gte=0"`
	ProDailyLimit   int `mapstructure:"pro_daily_limit"   validate:"gte=0"`
	EliteDailyLimit int `mapstructure:"elite_daily_limit" validate:"gte=0"`
}
