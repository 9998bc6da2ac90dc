package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	// postgres | sqlite
	Driver string `envconfig:"DRIVER" default:"postgres"`

	Host            string `envconfig:"HOST" default:"postgres"`
	Port            int    `envconfig:"PORT" default:"5432"`
	User            string `envconfig:"USER" default:"golf"`
	Password        string `envconfig:"PASSWORD" default:"golf"`
	Name            string `envconfig:"NAME" default:"golf_club"`
	SSLMode         string `envconfig:"SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"TIMEZONE" default:"Asia/Seoul"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"CONN_MAX_LIFETIME_MIN" default:"30"` // минут

	// Путь к файлу для драйвера sqlite (":memory:" тоже допустим).
	SQLitePath string `envconfig:"SQLITE_PATH" default:"golf_club.db"`
}

// LoadDBConfig читает переменные окружения с префиксом DB_.
func LoadDBConfig() (*DBConfig, error) {
	var cfg DBConfig
	if err := envconfig.Process("DB", &cfg); err != nil {
		return nil, fmt.Errorf("process db env: %w", err)
	}

	// минимальная валидация
	switch cfg.Driver {
	case "postgres":
		if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("invalid DB config: sqlite path must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return &cfg, nil
}
