package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl files describing steps
	SolidsPath   string // hcl manifests + handlers

	LogFormat   string
	LogLevel    string
	WorkerCount int
	SchedulesDB string // path to the schedule database, empty for in-memory
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
