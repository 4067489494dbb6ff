// Package config loads CLI configuration from defaults, an optional YAML
// file and JDSL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/datatype"
	"github.com/goliatone/go-jdsl/pkg/interp"
	"github.com/goliatone/go-jdsl/pkg/render"
)

// EnvPrefix namespaces environment overrides, e.g. JDSL_ENGINE_PREFIX.
const EnvPrefix = "JDSL"

// Config is the CLI configuration.
type Config struct {
	Templates string       `mapstructure:"templates"` // stylesheet directory
	Renderer  string       `mapstructure:"renderer"`  // html (default), safe-html, xml, text
	Engine    EngineConfig `mapstructure:"engine"`
	Log       LogConfig    `mapstructure:"log"`
	Watch     WatchConfig  `mapstructure:"watch"`
}

// EngineConfig mirrors interp.Config in a file-friendly shape.
type EngineConfig struct {
	Prefix          string `mapstructure:"prefix"`
	NamespaceURI    string `mapstructure:"namespace_uri"`
	DefaultDataType string `mapstructure:"default_data_type"`
	MaxCallDepth    int    `mapstructure:"max_call_depth"`
	LoopCounter     string `mapstructure:"loop_counter"` // "zero-based" (default) or "legacy"
}

// LogConfig controls the internal debug log.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`  // empty logs to stderr
	Level string `mapstructure:"level"` // debug, info (default), warn, error
}

// WatchConfig tunes `render --watch`.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Templates: "templates",
		Renderer:  render.NameHTML,
		Engine: EngineConfig{
			Prefix:          interp.DefaultPrefix,
			NamespaceURI:    interp.DefaultNamespaceURI,
			DefaultDataType: datatype.String,
			MaxCallDepth:    interp.DefaultMaxCallDepth,
			LoopCounter:     interp.LoopCounterZeroBased.String(),
		},
		Log: LogConfig{
			Level: log.LevelInfo.String(),
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// SetDefaults registers every default on v so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault("templates", defaults.Templates)
	v.SetDefault("renderer", defaults.Renderer)
	v.SetDefault("engine.prefix", defaults.Engine.Prefix)
	v.SetDefault("engine.namespace_uri", defaults.Engine.NamespaceURI)
	v.SetDefault("engine.default_data_type", defaults.Engine.DefaultDataType)
	v.SetDefault("engine.max_call_depth", defaults.Engine.MaxCallDepth)
	v.SetDefault("engine.loop_counter", defaults.Engine.LoopCounter)
	v.SetDefault("log.debug", defaults.Log.Debug)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (when set) into v and decodes the result. A missing
// default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "loaded config file", "path", v.ConfigFileUsed())
	} else {
		v.SetConfigName(".jdsl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the engine and renderers cannot recover from.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Engine.Prefix) == "" {
		return fmt.Errorf("config: engine.prefix is required")
	}
	if c.Engine.MaxCallDepth < 0 {
		return fmt.Errorf("config: engine.max_call_depth must not be negative")
	}
	switch strings.ToLower(c.Engine.LoopCounter) {
	case "", "zero-based", "legacy":
	default:
		return fmt.Errorf("config: engine.loop_counter %q must be zero-based or legacy", c.Engine.LoopCounter)
	}
	if c.Renderer != "" && !render.NewDefaultRegistry().Has(c.Renderer) {
		return fmt.Errorf("config: unknown renderer %q", c.Renderer)
	}
	return nil
}

// EngineOptions translates the engine section into interp options.
func (c Config) EngineOptions() []interp.Option {
	cfg := interp.DefaultConfig()
	cfg.NamespaceURI = c.Engine.NamespaceURI
	cfg.MaxCallDepth = c.Engine.MaxCallDepth
	cfg.LoopCounter = interp.ParseLoopCounter(c.Engine.LoopCounter)

	opts := []interp.Option{interp.WithConfig(cfg)}
	if c.Engine.Prefix != "" && c.Engine.Prefix != cfg.Prefix {
		opts = append(opts, interp.WithPrefix(c.Engine.Prefix))
	}
	if c.Engine.DefaultDataType != "" {
		opts = append(opts, interp.WithDefaultDataType(c.Engine.DefaultDataType))
	}
	return opts
}

// LogLevel parses the configured level, forcing debug when Debug is set.
func (c Config) LogLevel() log.Level {
	if c.Log.Debug {
		return log.LevelDebug
	}
	return log.ParseLevel(c.Log.Level)
}
