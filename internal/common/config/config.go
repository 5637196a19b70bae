// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Captcha CaptchaConfig `mapstructure:"captcha"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the backend REST API.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
	DebugAddr string `mapstructure:"debug_addr"`
}

// SessionConfig holds settings for session persistence and the idle monitor.
type SessionConfig struct {
	File             string `mapstructure:"file"`
	IdleTimeout      int    `mapstructure:"idle_timeout"`      // milliseconds
	WarningCountdown int    `mapstructure:"warning_countdown"` // milliseconds
}

// CacheConfig holds settings for the GET-response cache.
type CacheConfig struct {
	TTL int `mapstructure:"ttl"` // milliseconds
}

// CaptchaConfig holds the site key used to obtain captcha tokens for
// login and registration.
type CaptchaConfig struct {
	SiteKey string `mapstructure:"site_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
