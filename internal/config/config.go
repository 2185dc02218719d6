package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Session SessionConfig `yaml:"session"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// DBPath locates the sqlite notification store.
	DBPath string `yaml:"db_path"`
	// JWTSecret signs and verifies channel identity tokens.
	JWTSecret string `yaml:"jwt_secret"`
	// PublishToken guards the publish API. Empty disables the check.
	PublishToken   string   `yaml:"publish_token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ClientConfig struct {
	// BaseURL is the application origin; the channel endpoint and its
	// scheme derive from it.
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type SessionConfig struct {
	BackoffBase  time.Duration `yaml:"backoff_base"`
	MaxAttempts  int           `yaml:"max_attempts"`
	FeedCapacity int           `yaml:"feed_capacity"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			Host:      "0.0.0.0",
			DBPath:    "notifications.db",
			JWTSecret: "dev-secret-key",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
		},
		Session: SessionConfig{
			BackoffBase:  3 * time.Second,
			MaxAttempts:  5,
			FeedCapacity: 10,
		},
	}
}
