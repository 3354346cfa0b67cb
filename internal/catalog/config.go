package catalog

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls where the TLE catalog is fetched from and how long a
// fetch generation stays fresh.
type Config struct {
	SourceURL    string        `env:"CATALOG_SOURCE_URL" envDefault:"https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"`
	CachePath    string        `env:"CATALOG_CACHE_PATH" envDefault:"catalog.db"`
	TTL          time.Duration `env:"CATALOG_TTL" envDefault:"6h"`
	FetchTimeout time.Duration `env:"CATALOG_FETCH_TIMEOUT" envDefault:"60s"`
}

// ConfigFromEnv loads catalog configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse catalog env: %w", err)
	}
	return cfg, nil
}
