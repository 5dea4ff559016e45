package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Caja"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Mongo struct {
		URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database string `envconfig:"MONGO_DATABASE" default:"caja"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
