package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/atikulmunna/weblog/internal/aggregator"
	"github.com/atikulmunna/weblog/internal/stream"
)

// Configuration keys, shared by flags, the YAML file and WEBLOG_* env vars.
const (
	KeyOutput    = "output"
	KeyTop       = "top"
	KeyPreview   = "preview"
	KeyWorkers   = "workers"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyPort      = "port"
)

// EnvPrefix namespaces environment variables, e.g. WEBLOG_TOP=5.
const EnvPrefix = "WEBLOG"

// Config holds settings for a weblog run.
type Config struct {
	Output    string
	TopN      int
	Preview   int
	Workers   int
	LogLevel  string
	LogFormat string
	Port      int
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Output:    "text",
		TopN:      aggregator.DefaultTopN,
		Preview:   stream.PreviewLimit,
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		LogFormat: "console",
		Port:      8080,
	}
}

// SetDefaults registers Default() on v so unset keys resolve to it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyTop, d.TopN)
	v.SetDefault(KeyPreview, d.Preview)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyPort, d.Port)
}

// FromViper reads and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	c := Config{
		Output:    strings.ToLower(strings.TrimSpace(v.GetString(KeyOutput))),
		TopN:      v.GetInt(KeyTop),
		Preview:   v.GetInt(KeyPreview),
		Workers:   v.GetInt(KeyWorkers),
		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		Port:      v.GetInt(KeyPort),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration for errors and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Output {
	case "":
		c.Output = "text"
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("output must be one of text, json, logfmt (got %q)", c.Output)
	}

	if c.TopN < 0 {
		return fmt.Errorf("top must not be negative")
	}
	if c.Preview < 0 {
		return fmt.Errorf("preview must not be negative")
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	switch c.LogFormat {
	case "":
		c.LogFormat = "console"
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json (got %q)", c.LogFormat)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", c.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
