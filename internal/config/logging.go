package config

import "github.com/caarlos0/env/v11"

// LogConfig controls the global zerolog output. An empty FilePath logs to
// stdout; a file destination is size-capped with one rolled generation kept.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`

	FilePath  string `env:"LOG_FILE"`
	FileMaxMB int    `env:"LOG_FILE_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
