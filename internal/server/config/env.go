package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays the variables present in environ; absent ones keep
// their current value.
func parseEnv(config *Config, environ []string) error {
	opts := env.Options{Environment: env.ToMap(environ)}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
