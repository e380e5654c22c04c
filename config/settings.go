package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Settings are read from the environment, optionally via a .env file.
type Settings struct {
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	UserAgent    string        `env:"USER_AGENT" envDefault:"talkmeta/1.0"`
	CacheDir     string        `env:"CACHE_DIR" envDefault:"."`
	Profile      string        `env:"PROFILE"`
}

const envPrefix = "TALKMETA_"

// LoadSettings parses the TALKMETA_* environment variables.
func LoadSettings() (*Settings, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	s := &Settings{}
	if err := env.ParseWithOptions(s, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "Failed to parse settings")
	}
	return s, nil
}
