package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"github.com/tiwac100/hydrogen/pkg/validator"
)

// Load parses environment variables into the provided struct and then checks its
// `validate` tags.
//
// Example:
//
//	type Config struct {
//	    Port       int    `env:"HTTP_PORT" envDefault:"8080" validate:"gte=1,lte=65535"`
//	    UpstreamURL string `env:"UPSTREAM_URL" validate:"required,url"`
//	}
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is Load with every variable name prefixed, e.g. "STOREFRONT_".
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
