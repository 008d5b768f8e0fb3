package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModPath   string // mod definition file or directory
	InputJSON string // JSON object seeding "@input"

	LogFormat string
	LogLevel  string
	LogValues bool
	Headless  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModPath == "" {
		return nil, errors.New("ModPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
