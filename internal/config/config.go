// Package config loads the runtime configuration of the Sentra backend.
// Values come from an optional YAML file and environment variables; a local
// .env file is honored for development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type HTTPConfig struct {
	ListenAddr     string        `yaml:"listen_addr" env:"SENTRA_LISTEN_ADDR" env-default:":5000"`
	Mode           string        `yaml:"mode" env:"SENTRA_GIN_MODE" env-default:"release"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SENTRA_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SENTRA_WRITE_TIMEOUT" env-default:"10s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"SENTRA_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"SENTRA_DB_DSN" env-default:"host=localhost user=sentra password=sentra dbname=sentra port=5432 sslmode=disable"`
}

type RedisConfig struct {
	Addr          string `yaml:"addr" env:"SENTRA_REDIS_ADDR" env-default:"localhost:6379"`
	Password      string `yaml:"password" env:"SENTRA_REDIS_PASSWORD"`
	DB            int    `yaml:"db" env:"SENTRA_REDIS_DB" env-default:"0"`
	EventsChannel string `yaml:"events_channel" env:"SENTRA_EVENTS_CHANNEL" env-default:"sentra:incidents"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"SENTRA_JWT_SECRET"`
	Issuer     string        `yaml:"issuer" env:"SENTRA_JWT_ISSUER" env-default:"sentra"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"SENTRA_TOKEN_TTL" env-default:"24h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"SENTRA_BCRYPT_COST" env-default:"10"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"SENTRA_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"SENTRA_LOG_FORMAT" env-default:"json"`
}

// TelegramConfig configures the duty-channel notifier. An empty token
// disables it.
type TelegramConfig struct {
	BotToken    string `yaml:"bot_token" env:"SENTRA_TELEGRAM_TOKEN"`
	ChatID      int64  `yaml:"chat_id" env:"SENTRA_TELEGRAM_CHAT_ID"`
	MinPriority string `yaml:"min_priority" env:"SENTRA_TELEGRAM_MIN_PRIORITY" env-default:"High"`
}

// Load reads the configuration and validates what the API server needs.
func Load() (*AppConfig, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads .env (if present), then the YAML file named by SENTRA_CONFIG
// (if set), then the environment. It does not validate.
func Read() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if path := os.Getenv("SENTRA_CONFIG"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("SENTRA_JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("SENTRA_TELEGRAM_CHAT_ID is required when the telegram notifier is enabled")
	}
	return nil
}
