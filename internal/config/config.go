package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port    string `mapstructure:"APP_PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	DBDriver       string `mapstructure:"DB_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	MessageRateLimit  int64         `mapstructure:"MESSAGE_RATE_LIMIT"`
	MessageRateWindow time.Duration `mapstructure:"MESSAGE_RATE_WINDOW"`

	OTELEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var defaults = map[string]any{
	"APP_PORT":                    "8080",
	"GIN_MODE":                    "debug",
	"DB_DRIVER":                   "postgres",
	"DATABASE_URL":                "",
	"DB_MAX_OPEN_CONNS":           40,
	"DB_MAX_IDLE_CONNS":           10,
	"SESSION_SECRET":              "",
	"SESSION_TTL":                 "24h",
	"COOKIE_SECURE":               false,
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"KAFKA_BROKERS":               "",
	"KAFKA_TOPIC":                 "socialnet.events",
	"MINIO_ENDPOINT":              "",
	"MINIO_ACCESS_KEY":            "",
	"MINIO_SECRET_KEY":            "",
	"MINIO_BUCKET":                "post-media",
	"MINIO_USE_SSL":               false,
	"CORS_ORIGINS":                "http://localhost:5173,http://localhost:3000",
	"MESSAGE_RATE_LIMIT":          30,
	"MESSAGE_RATE_WINDOW":         "1m",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_SERVICE_NAME":           "socialnet",
}

// Load reads configuration from a .env file in the working directory and
// from environment variables, which take precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key gets a default before Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of postgres, mysql, sqlite")
	}
	return nil
}

// KafkaBrokerList splits KAFKA_BROKERS on commas.
func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

// CORSOriginList splits CORS_ORIGINS on commas.
func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
