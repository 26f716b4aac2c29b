package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress  = "localhost:8080"
	defaultEnv            = "local"
	defaultConfigDir      = ".pixelvault"
	defaultUnlockTTL      = 15 * time.Minute
	defaultRequestTimeout = 30 * time.Second

	ModeRemote = "remote"
	ModeLocal  = "local"

	configFileName = "config"
	tokenFileName  = "token"
	keyCacheName   = "keycache"
	databaseName   = "vault.db"
)

type Config struct {
	Env            string        `mapstructure:"app_env"`
	ServerAddress  string        `mapstructure:"server_address"`
	EnableTLS      bool          `mapstructure:"enable_tls"`
	ConfigDir      string        `mapstructure:"config_dir"`
	Mode           string        `mapstructure:"mode"`
	UnlockTTL      time.Duration `mapstructure:"unlock_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env, переменные окружения и config.yaml из каталога конфигурации.
// Переменные окружения важнее файла.
func Load() (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	configDir, err := resolveDir(v.GetString("config_dir"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = configDir
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("enable_tls", false)
	v.SetDefault("config_dir", defaultConfigDir)
	v.SetDefault("mode", ModeRemote)
	v.SetDefault("unlock_ttl", defaultUnlockTTL)
	v.SetDefault("request_timeout", defaultRequestTimeout)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:            v.GetString("app_env"),
		ServerAddress:  v.GetString("server_address"),
		EnableTLS:      v.GetBool("enable_tls"),
		ConfigDir:      v.GetString("config_dir"),
		Mode:           v.GetString("mode"),
		UnlockTTL:      v.GetDuration("unlock_ttl"),
		RequestTimeout: v.GetDuration("request_timeout"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDir превращает относительный каталог в каталог внутри $HOME.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = defaultConfigDir
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("не удалось определить домашнюю директорию: %w", err)
	}
	return filepath.Join(homeDir, dir), nil
}

func (c *Config) validate() error {
	if c.Mode != ModeRemote && c.Mode != ModeLocal {
		return fmt.Errorf("mode должен быть %q или %q, получено %q", ModeRemote, ModeLocal, c.Mode)
	}
	if c.Mode == ModeRemote && c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.UnlockTTL <= 0 {
		return fmt.Errorf("unlock_ttl должен быть положительным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout должен быть положительным")
	}
	return nil
}

// BaseURL возвращает адрес сервера со схемой.
func (c *Config) BaseURL() string {
	scheme := "http://"
	if c.EnableTLS {
		scheme = "https://"
	}
	return scheme + c.ServerAddress
}

func (c *Config) TokenPath() string {
	return filepath.Join(c.ConfigDir, tokenFileName)
}

func (c *Config) KeyCachePath() string {
	return filepath.Join(c.ConfigDir, keyCacheName)
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.ConfigDir, databaseName)
}

// IsLocalMode - работа без сервера, с локальной базой.
func (c *Config) IsLocalMode() bool {
	return c.Mode == ModeLocal
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
