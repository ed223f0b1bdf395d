// Package config loads client settings from the environment.
package config

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/samdwyer/wumpushunt/internal/client"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
	"github.com/samdwyer/wumpushunt/internal/turn"
)

// Config holds every setting the client reads at startup.
type Config struct {
	ServerURL  string `env:"WUMPUSHUNT_SERVER_URL" envDefault:"http://localhost:5000"`
	StartPath  string `env:"WUMPUSHUNT_START_PATH" envDefault:"/"`
	QuiverPath string `env:"WUMPUSHUNT_QUIVER_PATH" envDefault:"/quiver"`
	TurnPath   string `env:"WUMPUSHUNT_TURN_PATH" envDefault:"/turn"`

	ErrorStyle     string        `env:"WUMPUSHUNT_ERROR_STYLE" envDefault:"panel"`
	ConfirmTimeout time.Duration `env:"WUMPUSHUNT_CONFIRM_TIMEOUT" envDefault:"0s"`
	RequestTimeout time.Duration `env:"WUMPUSHUNT_REQUEST_TIMEOUT" envDefault:"10s"`
	Plain          bool          `env:"WUMPUSHUNT_PLAIN"`

	LogLevel string `env:"WUMPUSHUNT_LOG_LEVEL" envDefault:"warn"`
	LogFile  string `env:"WUMPUSHUNT_LOG_FILE" envDefault:"wumpushunt.log"`

	OTelEndpoint  string `env:"WUMPUSHUNT_OTEL_ENDPOINT"`
	HoneycombKey  string `env:"HONEYCOMB_WUMPUSHUNT_API_KEY"`
	HoneycombData string `env:"HONEYCOMB_WUMPUSHUNT_DATASET" envDefault:"wumpushunt"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load reads a Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return errors.Wrap(err, "server url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("server url %q must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return errors.Errorf("server url %q has no host", c.ServerURL)
	}
	if _, err := turn.NewErrorPresenter(c.ErrorStyle); err != nil {
		return err
	}
	if c.ConfirmTimeout < 0 {
		return errors.Errorf("confirm timeout %s is negative", c.ConfirmTimeout)
	}
	if c.RequestTimeout <= 0 {
		return errors.Errorf("request timeout %s must be positive", c.RequestTimeout)
	}
	return nil
}

// Endpoints resolves the three endpoint paths against the server URL.
func (c Config) Endpoints() (client.Endpoints, error) {
	base, err := url.Parse(c.ServerURL)
	if err != nil {
		return client.Endpoints{}, errors.Wrap(err, "server url")
	}
	resolve := func(path string) (string, error) {
		ref, err := url.Parse(path)
		if err != nil {
			return "", errors.Wrapf(err, "endpoint path %q", path)
		}
		return base.ResolveReference(ref).String(), nil
	}

	var ep client.Endpoints
	if ep.StartURL, err = resolve(c.StartPath); err != nil {
		return client.Endpoints{}, err
	}
	if ep.CheckQuiverURL, err = resolve(c.QuiverPath); err != nil {
		return client.Endpoints{}, err
	}
	if ep.TakeTurnURL, err = resolve(c.TurnPath); err != nil {
		return client.Endpoints{}, err
	}
	return ep, nil
}

// Telemetry returns the tracing settings.
func (c Config) Telemetry() telemetry.Config {
	return telemetry.Config{
		Endpoint: c.OTelEndpoint,
		APIKey:   c.HoneycombKey,
		Dataset:  c.HoneycombData,
	}
}
