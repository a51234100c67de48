package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vango-dev/polyroute/internal/errors"
)

// LoadDotEnv loads the .env file of dir into the process environment, if
// present. Variables already set are not overridden.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("E120").
			WithDetail("Failed to parse " + path).
			Wrap(err)
	}
	return nil
}

// ApplyEnv applies the POLYROUTE_* overrides. A nil environment reads the
// process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return errors.New("E103").
			WithDetail("Invalid environment override.").
			Wrap(err)
	}
	return nil
}
