package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/denniswebb/fwfacts/internal/metrics"
)

// Output formats accepted by --output.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Listing sources accepted by --source.
const (
	SourceList  = "list"
	SourceRules = "rules"
)

// Config captures the runtime settings for fwfacts commands.
type Config struct {
	LogLevel  string        `mapstructure:"log-level"`
	LogFormat string        `mapstructure:"log-format"`
	Output    string        `mapstructure:"output"`
	Source    string        `mapstructure:"source"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Strict    bool          `mapstructure:"strict"`
	Textfile  string        `mapstructure:"textfile"`
	Suffix    string        `mapstructure:"suffix"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("output", OutputText)
	v.SetDefault("source", SourceList)
	v.SetDefault("timeout", "10s")
	v.SetDefault("strict", false)
	v.SetDefault("textfile", "")
	v.SetDefault("suffix", "")
}

// Load reads configuration values from viper into a Config instance.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates configuration from the given viper instance.
func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to load configuration: %w", err)
	}

	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for values no command can use.
func (c Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML, OutputTable:
	default:
		return fmt.Errorf("invalid output format %q: want text, json, yaml or table", c.Output)
	}

	switch c.Source {
	case SourceList, SourceRules:
	default:
		return fmt.Errorf("invalid listing source %q: want list or rules", c.Source)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}

	if strings.TrimSpace(c.Textfile) != "" {
		if err := metrics.ValidateTextfilePath(c.Textfile); err != nil {
			return err
		}
	}
	return nil
}
