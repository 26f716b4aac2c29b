package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress      = ":8080"
	defaultBcryptCost      = 12
	defaultSessionTTL      = 24 * time.Hour
	defaultSweepInterval   = 10 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxEntryBytes   = 50 * 1024 * 1024
	defaultRotationTTL     = 15 * time.Minute

	minBcryptCost = 4
	maxBcryptCost = 31
)

type Config struct {
	Env      string
	DB       db
	Server   server
	Logger   logger
	Security security
	Session  session
	Entries  entries
	Rotation rotation
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
}

type server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type security struct {
	BcryptCost int `env:"BCRYPT_COST"`
}

type session struct {
	TTL           time.Duration `env:"SESSION_TTL"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL"`
}

type entries struct {
	MaxBytes int `env:"MAX_ENTRY_BYTES"`
}

type rotation struct {
	// StagingTTL - сколько живет незафиксированная ротация мастер-пароля.
	StagingTTL time.Duration `env:"ROTATION_STAGING_TTL"`
}

// MustLoad загружает конфигурацию и паникует при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("load %s: %v", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", defaultRunAddress)
	v.SetDefault("log_level", "info")
	v.SetDefault("bcrypt_cost", defaultBcryptCost)
	v.SetDefault("session_ttl", defaultSessionTTL)
	v.SetDefault("session_sweep_interval", defaultSweepInterval)
	v.SetDefault("shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("max_entry_bytes", defaultMaxEntryBytes)
	v.SetDefault("rotation_staging_ttl", defaultRotationTTL)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: db{
			DatabaseURI: v.GetString("database_uri"),
		},
		Server: server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logger: logger{LogLevel: v.GetString("log_level")},
		Security: security{
			BcryptCost: clampCost(v.GetInt("bcrypt_cost")),
		},
		Session: session{
			TTL:           v.GetDuration("session_ttl"),
			SweepInterval: v.GetDuration("session_sweep_interval"),
		},
		Entries:  entries{MaxBytes: v.GetInt("max_entry_bytes")},
		Rotation: rotation{StagingTTL: v.GetDuration("rotation_staging_ttl")},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown app_env %q", c.Env)
	}
	if c.DB.DatabaseURI == "" {
		return errors.New("database_uri is not set")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("session_sweep_interval must be positive")
	}
	if c.Entries.MaxBytes <= 0 {
		return errors.New("max_entry_bytes must be positive")
	}
	if c.Rotation.StagingTTL <= 0 {
		return errors.New("rotation_staging_ttl must be positive")
	}
	return nil
}

func clampCost(cost int) int {
	if cost < minBcryptCost {
		return minBcryptCost
	}
	if cost > maxBcryptCost {
		return maxBcryptCost
	}
	return cost
}
