// config - источник загрузки конфигурации SmartDoc.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig — настройки CLI-клиента smartdoc.
type ClientConfig struct {
	Env string `yaml:"env" env:"ENV" env-default:"local"`

	// BaseURL — базовый URL API бэкенда.
	BaseURL string `yaml:"base_url" env:"SMARTDOC_BASE_URL" env-default:"http://localhost:5000/api"`

	// StateDir — каталог персистентного состояния сессий;
	// пустое значение означает <user config dir>/smartdoc.
	StateDir string `yaml:"state_dir" env:"SMARTDOC_STATE_DIR"`

	// Timeout — таймаут одного HTTP-запроса целиком.
	Timeout time.Duration `yaml:"timeout" env:"SMARTDOC_TIMEOUT" env-default:"30s"`
}

// ServerConfig — настройки dev-сервера smartdoc.
type ServerConfig struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
}

// HTTPConfig — публичный REST-сервер.
type HTTPConfig struct {
	Host    string        `yaml:"host"    env:"HTTP_HOST"    env-default:"0.0.0.0"`
	Port    string        `yaml:"port"    env:"HTTP_PORT"    env-default:"5000"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MetricsConfig — отдельный HTTP для Prometheus.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"5090"`
}

func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// AuthConfig — параметры выпуска токенов.
type AuthConfig struct {
	// JWTSecret обязателен: dev-сервер не стартует с пустым секретом.
	JWTSecret  string        `yaml:"jwt_secret"  env:"JWT_SECRET"`
	AccessTTL  time.Duration `yaml:"access_ttl"  env:"ACCESS_TTL"  env-default:"24h"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL" env-default:"720h"`
}

// StorageConfig — файл базы SQLite.
type StorageConfig struct {
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"smartdoc.db"`
}

// LoadClient загружает конфигурацию CLI-клиента.
func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := load(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoadServer — паника при ошибке загрузки.
func MustLoadServer(path string) *ServerConfig {
	cfg, err := LoadServer(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// LoadServer загружает конфигурацию dev-сервера и валидирует обязательные поля.
func LoadServer(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := load(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (yaml auth.jwt_secret or env JWT_SECRET)")
	}

	return &cfg, nil
}

func load(path string, cfg any) error {
	tryRead := func(p string) error {
		if p == "" {
			return fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}

		return nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return nil
}
