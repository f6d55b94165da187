package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Redis      RedisConfig      `yaml:"redis"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Board      BoardConfig      `yaml:"board"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type RestaurantConfig struct {
	ID       string `yaml:"id"`
	Timezone string `yaml:"timezone"`
}

type BoardConfig struct {
	// PollIntervalSeconds is the cadence of the live-board re-fetch and the
	// new-order scan.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// SessionTTLMinutes bounds how long a stored role-mode outlives its last
	// write.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Restaurant.Timezone == "" {
		return nil, fmt.Errorf("restaurant.timezone is required")
	}
	if cfg.Board.PollIntervalSeconds <= 0 {
		cfg.Board.PollIntervalSeconds = 5
	}
	if cfg.Board.SessionTTLMinutes <= 0 {
		cfg.Board.SessionTTLMinutes = 12 * 60
	}

	return &cfg, nil
}
