package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the process needs, read once at startup.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	StoreTimeout   time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RedisURL         string
	CategoryCacheTTL time.Duration

	RabbitMQURL string

	CORSOrigins string
}

// Load reads config.env / .env when present, then the process environment.
func Load() (*Config, error) {
	loadEnvFiles()
	return FromViper(newViper())
}

// LoadWithoutListener is Load for entry points that never bind a port, such as the
// seed command and the Lambda handler. PORT is not required.
func LoadWithoutListener() (*Config, error) {
	loadEnvFiles()
	return fromViper(newViper(), false)
}

func loadEnvFiles() {
	// Missing files are fine, the environment wins anyway.
	_ = godotenv.Load("config.env")
	_ = godotenv.Load(".env")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("TOKEN_TTL", "720h")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("CATEGORY_CACHE_TTL", "10m")
	v.SetDefault("CORS_ORIGINS", "*")
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	return fromViper(v, true)
}

func fromViper(v *viper.Viper, listens bool) (*Config, error) {
	cfg := &Config{
		Env:              strings.ToLower(v.GetString("APP_ENV")),
		Port:             v.GetString("PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBMaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		StoreTimeout:     v.GetDuration("STORE_TIMEOUT"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		RedisURL:         v.GetString("REDIS_URL"),
		CategoryCacheTTL: v.GetDuration("CATEGORY_CACHE_TTL"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		CORSOrigins:      v.GetString("CORS_ORIGINS"),
	}
	validate := cfg.Validate
	if !listens {
		validate = cfg.validateSettings
	}
	if err := validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or unusable setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("missing required env PORT"))
	}
	return errors.Join(append(errs, c.validateSettings())...)
}

func (c *Config) validateSettings() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether internal error details may be shown to callers.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ListenAddr turns PORT into a fiber listen address.
func (c *Config) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
