package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig              `yaml:"log" mapstructure:"log"`
	Server  ServerConfig           `yaml:"server" mapstructure:"server"`
	Store   StoreConfig            `yaml:"store" mapstructure:"store"`
	Dataset DatasetConfig          `yaml:"dataset" mapstructure:"dataset"`
	Markets MarketsConfig          `yaml:"markets" mapstructure:"markets"`
	Engine  EngineConfig           `yaml:"engine" mapstructure:"engine"`
	Scoring ScoringConfig          `yaml:"scoring" mapstructure:"scoring"`
	Profile model.ArbitrageProfile `yaml:"profile" mapstructure:"profile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// RequestTimeout returns the per-request timeout.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSecs) * time.Second
}

// StoreConfig configures the run snapshot database.
type StoreConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns        int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns        int32  `yaml:"min_conns" mapstructure:"min_conns"`
	ConnectAttempts int    `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// DatasetConfig points at an opportunity YAML file. An empty path uses the
// built-in South Bay seed.
type DatasetConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MarketsConfig points at an STR market table. An empty path uses the
// built-in table.
type MarketsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EngineConfig tunes repository construction.
type EngineConfig struct {
	AttachConcurrency int `yaml:"attach_concurrency" mapstructure:"attach_concurrency"`
}

// ScoringConfig holds the arbitrage factor weights.
type ScoringConfig struct {
	Weights scoring.Weights `yaml:"weights" mapstructure:"weights"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ARBITRAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.request_timeout_secs", 30)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "arbitrage.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("store.connect_attempts", 3)

	v.SetDefault("dataset.path", "")
	v.SetDefault("markets.path", "")
	v.SetDefault("engine.attach_concurrency", 8)

	w := scoring.DefaultWeights()
	v.SetDefault("scoring.weights.regulatory_upside", w.RegulatoryUpside)
	v.SetDefault("scoring.weights.zoning_flex", w.ZoningFlex)
	v.SetDefault("scoring.weights.density_potential", w.DensityPotential)
	v.SetDefault("scoring.weights.underbuild_gap", w.UnderbuildGap)
	v.SetDefault("scoring.weights.financing_advantage", w.FinancingAdvantage)
	v.SetDefault("scoring.weights.risk_adjusted_yield", w.RiskAdjustedYield)
	v.SetDefault("scoring.weights.owner_occupied_fit", w.OwnerOccupiedFit)

	p := model.DefaultProfile()
	v.SetDefault("profile.will_occupy", p.WillOccupy)
	v.SetDefault("profile.horizon", string(p.Horizon))
	v.SetDefault("profile.risk_tolerance", string(p.RiskTolerance))
	v.SetDefault("profile.renovation_comfort", p.RenovationComfort)
	v.SetDefault("profile.credit_tier", string(p.CreditTier))
	strategies := make([]string, len(p.StrategyPreferences))
	for i, s := range p.StrategyPreferences {
		strategies[i] = string(s)
	}
	v.SetDefault("profile.strategy_preferences", strategies)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
