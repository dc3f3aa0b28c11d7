package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Format {
	case "json", "console", "":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, "server.rate_limit_rps must be >= 0")
	}
	if c.Server.RateLimitBurst < 0 {
		errs = append(errs, "server.rate_limit_burst must be >= 0")
	}
	if c.Server.RequestTimeoutSecs < 0 {
		errs = append(errs, "server.request_timeout_secs must be >= 0")
	}

	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres (ARBITRAGE_STORE_DATABASE_URL)")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns {
		errs = append(errs, "store.min_conns must be <= store.max_conns")
	}

	if c.Engine.AttachConcurrency < 0 {
		errs = append(errs, "engine.attach_concurrency must be >= 0")
	}

	if err := scoring.ValidateWeights(c.Scoring.Weights); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Profile.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
