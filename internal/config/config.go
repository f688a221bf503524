package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration — time.Duration с разбором человекочитаемых значений ("15s", "30m")
// из YAML: yaml.v3 сам по себе такие строки в time.Duration не умеет.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("длительность должна быть строкой вида \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("разбор длительности %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Remote     RemoteConfig     `yaml:"remote"`
	Sync       SyncConfig       `yaml:"sync"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	// Путь к файлу SQLite (или ":memory:").
	DSN string `yaml:"dsn"`
}

type RemoteConfig struct {
	// Базовый URL удалённого документного сервиса (json-server-совместимый).
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
	// Максимум повторов при транспортной ошибке.
	MaxRetries uint `yaml:"max_retries"`
}

type SyncConfig struct {
	// Периодичность фоновой синхронизации; 0 выключает воркер.
	Interval Duration `yaml:"interval"`
	// Политика учёта незавершённого "сегодня": "grace" или "strict".
	StreakPolicy string `yaml:"streak_policy"`
	// Глубина обхода истории при расчёте текущей серии, в днях.
	StreakLookbackDays int `yaml:"streak_lookback_days"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "sqlite" или "inmemory"
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yml"
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	cfg := defaults()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("remote.base_url обязателен")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: "8080"},
		Database: DatabaseConfig{DSN: "achieve.db"},
		Remote: RemoteConfig{
			Timeout:    Duration(15 * time.Second),
			MaxRetries: 3,
		},
		Sync: SyncConfig{
			Interval:           Duration(30 * time.Minute),
			StreakPolicy:       "grace",
			StreakLookbackDays: 365,
		},
		Repository: RepositoryConfig{Type: "sqlite"},
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
