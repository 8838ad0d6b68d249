// Package config loads munsellkit settings from a YAML file, MUNSELLKIT_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
	"github.com/jmylchreest/munsellkit/internal/render"
)

// EnvPrefix is the environment variable prefix, e.g. MUNSELLKIT_RSCRIPT_PATH.
const EnvPrefix = "MUNSELLKIT"

// Keys.
const (
	KeyRscriptPath    = "rscript.path"
	KeyRscriptTimeout = "rscript.timeout"
	KeyScriptsDir     = "rscript.scripts_dir"
	KeyOutputFormat   = "output.format"
	KeyOutputRounding = "output.rounding"
	KeyOutputTruncate = "output.truncate"
	KeyOutputTemplate = "output.template"
	KeyOutputPreview  = "output.preview"
	KeyBatchWorkers   = "batch.workers"
	KeyLogLevel       = "log.level"
	KeyXYC            = "conversion.xyc"
	KeyWhite          = "conversion.white"
	KeyMethod         = "conversion.method"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultRounding = "1"
	defaultLogLevel = "info"
	defaultMethod   = "rscript"
)

// Config holds resolved settings.
type Config struct {
	RscriptPath    string
	RscriptTimeout time.Duration
	ScriptsDir     string

	Format   render.Format
	Rounding munsell.Rounding
	Truncate bool
	Template string
	Preview  bool

	Workers  int
	LogLevel string
	XYC      string
	White    colour.Illuminant
	Method   string

	// File is the config file that was read, empty if none.
	File string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRscriptTimeout, defaultTimeout)
	v.SetDefault(KeyOutputFormat, string(render.FormatText))
	v.SetDefault(KeyOutputRounding, defaultRounding)
	v.SetDefault(KeyOutputTruncate, true)
	v.SetDefault(KeyBatchWorkers, 0)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyMethod, defaultMethod)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultDir returns $HOME/.config/munsellkit.
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "munsellkit"), nil
}

// Load reads the config file into v and resolves the settings. An explicit
// path must exist; without one, config.yaml in DefaultDir is read when
// present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", expanded, err)
		}
	} else if dir, err := DefaultDir(); err == nil {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// FromViper resolves settings from v without reading any file.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		RscriptPath:    v.GetString(KeyRscriptPath),
		RscriptTimeout: v.GetDuration(KeyRscriptTimeout),
		ScriptsDir:     v.GetString(KeyScriptsDir),
		Truncate:       v.GetBool(KeyOutputTruncate),
		Template:       v.GetString(KeyOutputTemplate),
		Preview:        v.GetBool(KeyOutputPreview),
		Workers:        v.GetInt(KeyBatchWorkers),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		XYC:            v.GetString(KeyXYC),
		Method:         v.GetString(KeyMethod),
	}

	var err error
	if cfg.Format, err = render.ParseFormat(v.GetString(KeyOutputFormat)); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyOutputFormat, err)
	}
	if cfg.Rounding, err = munsell.ParseRounding(v.GetString(KeyOutputRounding)); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyOutputRounding, err)
	}
	if cfg.White, err = colour.ParseIlluminant(v.GetString(KeyWhite)); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyWhite, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be checked by parsing alone.
func (c *Config) Validate() error {
	if c.RscriptTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyRscriptTimeout, c.RscriptTimeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", KeyBatchWorkers, c.Workers)
	}
	if c.Format == render.FormatTemplate && c.Template == "" {
		return fmt.Errorf("%s is required when %s is %q", KeyOutputTemplate, KeyOutputFormat, render.FormatTemplate)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("%s: unknown level %q", KeyLogLevel, c.LogLevel)
	}
	if c.ScriptsDir != "" {
		dir, err := homedir.Expand(c.ScriptsDir)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyScriptsDir, err)
		}
		c.ScriptsDir = dir
	}
	return nil
}
