package config

import (
	"inversebias/pkg/config"
)

// Config holds the full configuration for the API service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	API      config.API      `mapstructure:"api"`
}

// Load loads the API configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.DefaultLimit == 0 {
		cfg.API.DefaultLimit = 50
	}
	if cfg.API.MaxLimit == 0 {
		cfg.API.MaxLimit = 500
	}
	return &cfg, nil
}
