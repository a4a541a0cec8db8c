package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config berisi seluruh pengaturan aplikasi dari environment (.env ikut dibaca)
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN      string `envconfig:"DB_DSN"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBName     string `envconfig:"DB_NAME" default:"kafe_cerita"`

	JWTSecret     string        `envconfig:"JWT_SECRET"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"24h"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`

	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug bool   `envconfig:"TELEGRAM_DEBUG" default:"false"`

	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	CafeName          string        `envconfig:"CAFE_NAME" default:"Kafe Cerita"`
	MenuSeedFile      string        `envconfig:"MENU_SEED_FILE"`
	CORSOrigin        string        `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	ChatRatePerMinute int           `envconfig:"CHAT_RATE_PER_MINUTE" default:"30"`
}

// Load membaca .env (bila ada) lalu memetakan environment ke Config
func Load(envFiles ...string) (*Config, error) {
	// .env tidak wajib ada
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or mysql)", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ChatRatePerMinute <= 0 {
		return fmt.Errorf("CHAT_RATE_PER_MINUTE must be positive, got %d", c.ChatRatePerMinute)
	}
	// secret bawaan hanya untuk pengembangan lokal
	if c.GinMode == "release" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required when GIN_MODE=release")
	}
	return nil
}

// DSN mengembalikan DB_DSN, atau menyusunnya dari DB_USER/DB_HOST/... untuk mysql
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return c.DBName + ".db"
}
