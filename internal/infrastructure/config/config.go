package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret is only ever used outside production. Load refuses to start
// a production process without an explicit JWT_SECRET.
const devJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`

	AdminEmail    string `env:"ADMIN_EMAIL,    default=admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD, default=admin123"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	AI    AIConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AIConfig struct {
	BaseURL     string        `env:"AI_BASE_URL,     default=https://router.huggingface.co/v1"`
	APIKey      string        `env:"AI_API_KEY"`
	Model       string        `env:"AI_MODEL,        default=moonshotai/Kimi-K2-Instruct-0905"`
	Temperature float64       `env:"AI_TEMPERATURE,  default=0.3"`
	MaxTokens   int           `env:"AI_MAX_TOKENS,   default=1200"`
	Timeout     time.Duration `env:"AI_TIMEOUT,      default=60s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=upskill"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// The JWT secret fails closed: production requires an explicit value, other
// environments fall back to a development-only key.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("config: JWT_SECRET is required when ENV=production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return &cfg, nil
}
