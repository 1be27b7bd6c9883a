// Package config loads application configuration and initializes logging.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/spatial-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig configures dataset loading.
type InputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	IDField   string `yaml:"id_field" mapstructure:"id_field"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
}

// AnalysisConfig holds the default analytical specification. Command flags
// override these per invocation.
type AnalysisConfig struct {
	Attribute string         `yaml:"attribute" mapstructure:"attribute"`
	Alpha     float64        `yaml:"alpha" mapstructure:"alpha"`
	Rule      model.RuleSpec `yaml:"rule" mapstructure:"rule"`
}

// StoreConfig configures the local run catalog.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig configures the optional PostGIS results target.
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required for the given mode. Modes correspond
// to commands: "analyze" needs an input path, "serve" a usable port,
// "publish" a Postgres URL.
func (c *Config) Validate(mode string) error {
	var errs []string
	if !(c.Analysis.Alpha > 0 && c.Analysis.Alpha < 1) {
		errs = append(errs, "analysis.alpha must be in (0, 1)")
	}
	switch mode {
	case "analyze":
		if c.Input.Path == "" {
			errs = append(errs, "input.path is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "publish":
		if c.Postgres.DatabaseURL == "" {
			errs = append(errs, "postgres.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SPATIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("analysis.alpha", 0.05)
	v.SetDefault("analysis.rule.kind", string(model.RuleKNearest))
	v.SetDefault("analysis.rule.k", 8)
	v.SetDefault("store.path", "spatial.db")
	v.SetDefault("postgres.schema", "analysis")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// WriteExample writes a starter config.yaml with the defaults filled in.
// Fails if the file already exists.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}
	cfg := Config{
		Input: InputConfig{Path: "data/neighborhoods.shp", IDField: "geoid"},
		Analysis: AnalysisConfig{
			Attribute: "price",
			Alpha:     0.05,
			Rule:      model.RuleSpec{Kind: model.RuleKNearest, K: 8},
		},
		Store:    StoreConfig{Path: "spatial.db"},
		Postgres: PostgresConfig{Schema: "analysis"},
		Server:   ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal example")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write example")
	}
	return nil
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
