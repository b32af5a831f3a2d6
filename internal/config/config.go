package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Breach     BreachConfig     `mapstructure:"breach"`
	Passwords  PasswordsConfig  `mapstructure:"passwords"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	History    HistoryConfig    `mapstructure:"history"`
	Waitlist   WaitlistConfig   `mapstructure:"waitlist"`
	DarkWeb    DarkWebConfig    `mapstructure:"darkweb"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	GRPCEnabled     bool          `mapstructure:"grpc_enabled"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	ScanCompleted  string `mapstructure:"scan_completed"`
	ThreatDetected string `mapstructure:"threat_detected"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// AuthConfig guards /api/v1 with static API keys when enabled
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// BreachConfig configures the breach-record provider
type BreachConfig struct {
	Provider        string        `mapstructure:"provider"` // breachdirectory or hibp
	RapidAPIKey     string        `mapstructure:"rapidapi_key"`
	RapidAPIHost    string        `mapstructure:"rapidapi_host"`
	BaseURL         string        `mapstructure:"base_url"`
	HIBPAPIKey      string        `mapstructure:"hibp_api_key"`
	HIBPBaseURL     string        `mapstructure:"hibp_base_url"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// PasswordsConfig configures the k-anonymity range API
type PasswordsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig selects the message classifier
type ClassifierConfig struct {
	Mode            string        `mapstructure:"mode"`     // rules or ai
	Provider        string        `mapstructure:"provider"` // gemini, claude or openai
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	ClaudeAPIKey    string        `mapstructure:"claude_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	Model           string        `mapstructure:"model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
}

// HistoryConfig selects where scan history lives
type HistoryConfig struct {
	Backend    string `mapstructure:"backend"` // memory, redis, postgres or sqlite
	MaxEntries int    `mapstructure:"max_entries"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// WaitlistConfig selects where waitlist sign-ups live
type WaitlistConfig struct {
	Backend string `mapstructure:"backend"` // memory or postgres
}

type DarkWebConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shadow-cleaner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.grpc_enabled", true)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shadow")
	v.SetDefault("database.dbname", "shadowcleaner")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "shadow:")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "SHADOW_EVENTS")
	v.SetDefault("nats.subjects.scan_completed", "shadow.scan.completed")
	v.SetDefault("nats.subjects.threat_detected", "shadow.threat.detected")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.requests_per_minute", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("breach.provider", "breachdirectory")
	v.SetDefault("breach.rapidapi_host", "breachdirectory.p.rapidapi.com")
	v.SetDefault("breach.base_url", "https://breachdirectory.p.rapidapi.com")
	v.SetDefault("breach.hibp_base_url", "https://haveibeenpwned.com/api/v3")
	v.SetDefault("breach.user_agent", "Stagbyte-Shadow-Cleaner")
	v.SetDefault("breach.timeout", 10*time.Second)
	v.SetDefault("breach.request_interval", 1500*time.Millisecond)
	v.SetDefault("breach.cache_ttl", time.Hour)

	v.SetDefault("passwords.base_url", "https://api.pwnedpasswords.com")
	v.SetDefault("passwords.user_agent", "ShadowCleaner/1.0")
	v.SetDefault("passwords.timeout", 10*time.Second)

	v.SetDefault("classifier.mode", "rules")
	v.SetDefault("classifier.provider", "gemini")
	v.SetDefault("classifier.model", "gemini-2.0-flash-exp")
	v.SetDefault("classifier.temperature", 0.1)
	v.SetDefault("classifier.max_tokens", 1024)
	v.SetDefault("classifier.timeout", 20*time.Second)
	v.SetDefault("classifier.request_interval", 100*time.Millisecond)

	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.max_entries", 10)
	v.SetDefault("history.sqlite_path", "shadowcleaner-history.db")

	v.SetDefault("waitlist.backend", "memory")

	v.SetDefault("darkweb.enabled", true)
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error when no explicit path was given.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/shadowcleaner")
	}

	v.SetEnvPrefix("SHADOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Nested keys are not picked up by AutomaticEnv during Unmarshal.
	bind := func(key string, envs ...string) {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	bind("app.environment", "SHADOW_APP_ENVIRONMENT")
	bind("server.http_port", "SHADOW_SERVER_HTTP_PORT", "PORT")
	bind("database.enabled", "SHADOW_DATABASE_ENABLED")
	bind("database.host", "SHADOW_DATABASE_HOST")
	bind("database.port", "SHADOW_DATABASE_PORT")
	bind("database.user", "SHADOW_DATABASE_USER")
	bind("database.password", "SHADOW_DATABASE_PASSWORD")
	bind("database.dbname", "SHADOW_DATABASE_DBNAME")
	bind("database.sslmode", "SHADOW_DATABASE_SSLMODE")
	bind("redis.enabled", "SHADOW_REDIS_ENABLED")
	bind("redis.host", "SHADOW_REDIS_HOST")
	bind("redis.port", "SHADOW_REDIS_PORT")
	bind("redis.password", "SHADOW_REDIS_PASSWORD")
	bind("nats.enabled", "SHADOW_NATS_ENABLED")
	bind("nats.url", "SHADOW_NATS_URL")
	bind("logger.level", "SHADOW_LOGGER_LEVEL")
	bind("breach.provider", "SHADOW_BREACH_PROVIDER")
	bind("breach.rapidapi_key", "SHADOW_BREACH_RAPIDAPI_KEY", "RAPIDAPI_KEY")
	bind("breach.hibp_api_key", "SHADOW_BREACH_HIBP_API_KEY", "HIBP_API_KEY")
	bind("classifier.mode", "SHADOW_CLASSIFIER_MODE")
	bind("classifier.provider", "SHADOW_CLASSIFIER_PROVIDER")
	bind("classifier.gemini_api_key", "SHADOW_CLASSIFIER_GEMINI_API_KEY", "GEMINI_API_KEY")
	bind("classifier.claude_api_key", "SHADOW_CLASSIFIER_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	bind("classifier.openai_api_key", "SHADOW_CLASSIFIER_OPENAI_API_KEY", "OPENAI_API_KEY")
	bind("history.backend", "SHADOW_HISTORY_BACKEND")
	bind("waitlist.backend", "SHADOW_WAITLIST_BACKEND")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "memory", "redis", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid history backend %q", c.History.Backend)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history max_entries must be at least 1, got %d", c.History.MaxEntries)
	}
	switch c.Waitlist.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid waitlist backend %q", c.Waitlist.Backend)
	}
	switch c.Classifier.Mode {
	case "rules", "ai":
	default:
		return fmt.Errorf("invalid classifier mode %q", c.Classifier.Mode)
	}
	switch c.Breach.Provider {
	case "breachdirectory", "hibp":
	default:
		return fmt.Errorf("invalid breach provider %q", c.Breach.Provider)
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}
