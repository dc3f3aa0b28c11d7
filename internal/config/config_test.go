package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 20, cfg.Server.RateLimitRPS, 0.001)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "arbitrage.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Empty(t, cfg.Dataset.Path)
	assert.Empty(t, cfg.Markets.Path)
	assert.Equal(t, 8, cfg.Engine.AttachConcurrency)
	assert.Equal(t, scoring.DefaultWeights(), cfg.Scoring.Weights)
	assert.Equal(t, model.DefaultProfile(), cfg.Profile)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/arbitrage
log:
  level: debug
  format: console
server:
  port: 9090
dataset:
  path: data/listings.yaml
scoring:
  weights:
    regulatory_upside: 20
    density_potential: 18
profile:
  will_occupy: true
  current_rent: 4500
  credit_tier: A
  strategy_preferences: [ADU, HouseHack]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/arbitrage", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "data/listings.yaml", cfg.Dataset.Path)
	assert.InDelta(t, 20, cfg.Scoring.Weights.RegulatoryUpside, 0.001)
	assert.InDelta(t, 18, cfg.Scoring.Weights.DensityPotential, 0.001)
	// Defaults still apply for unset values
	assert.InDelta(t, 15, cfg.Scoring.Weights.ZoningFlex, 0.001)
	assert.Equal(t, model.HorizonMedium, cfg.Profile.Horizon)

	assert.True(t, cfg.Profile.WillOccupy)
	require.NotNil(t, cfg.Profile.CurrentRent)
	assert.InDelta(t, 4500, *cfg.Profile.CurrentRent, 0.001)
	assert.Equal(t, model.CreditA, cfg.Profile.CreditTier)
	assert.Equal(t, []model.Strategy{model.StrategyADU, model.StrategyHouseHack}, cfg.Profile.StrategyPreferences)

	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ARBITRAGE_STORE_DRIVER", "sqlite")
	t.Setenv("ARBITRAGE_LOG_LEVEL", "warn")
	t.Setenv("ARBITRAGE_PROFILE_CREDIT_TIER", "C")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, model.CreditC, cfg.Profile.CreditTier)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [port"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Log.Format = "json"
	cfg.Server.Port = 8080
	cfg.Store.Driver = "sqlite"
	cfg.Scoring.Weights = scoring.DefaultWeights()
	cfg.Profile = model.DefaultProfile()
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: []string{"server.port"},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "mysql" },
			wantErr: []string{"store.driver"},
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Store.Driver = "postgres" },
			wantErr: []string{"store.database_url"},
		},
		{
			name: "pool bounds",
			mutate: func(c *Config) {
				c.Store.MaxConns = 2
				c.Store.MinConns = 5
			},
			wantErr: []string{"min_conns"},
		},
		{
			name:    "weights off",
			mutate:  func(c *Config) { c.Scoring.Weights.OwnerOccupiedFit = 50 },
			wantErr: []string{"weights should sum to 100"},
		},
		{
			name: "collects every problem",
			mutate: func(c *Config) {
				c.Log.Format = "xml"
				c.Server.RateLimitRPS = -1
				c.Engine.AttachConcurrency = -2
				c.Profile.Horizon = "forever"
			},
			wantErr: []string{"log.format", "rate_limit_rps", "attach_concurrency", "unknown horizon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
