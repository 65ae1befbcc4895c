// Package config loads labelprint settings from a TOML file.
//
// A missing file is not an error: every field has a default, so the tool
// works with no configuration at all. The file lives at
// $XDG_CONFIG_HOME/labelprint/config.toml, falling back to
// ~/.config/labelprint/config.toml.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/labelprint/pkg/dispatch"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/output"
	"github.com/matzehuels/labelprint/pkg/render"
)

const (
	appName  = "labelprint"
	fileName = "config.toml"

	// DefaultAddr is where the HTTP API listens unless configured otherwise.
	DefaultAddr = "127.0.0.1:8765"
)

// Config is the complete configuration.
type Config struct {
	TempDir        string   `toml:"temp_dir"`
	OutputPrefix   string   `toml:"output_prefix"`
	Timeout        Duration `toml:"timeout"`
	DefaultPrinter string   `toml:"default_printer"`

	Engines Engines `toml:"engines"`
	Chrome  Chrome  `toml:"chrome"`
	Spool   Spool   `toml:"spool"`
	Server  Server  `toml:"server"`
}

// Engines holds the renderer priority order per input kind.
type Engines struct {
	Markup []string `toml:"markup"`
	Raster []string `toml:"raster"`
}

// Chrome configures the headless Chrome engine.
type Chrome struct {
	ExecPath  string `toml:"exec_path"`
	NoSandbox bool   `toml:"no_sandbox"`
}

// Spool names the CUPS client programs.
type Spool struct {
	Lpr    string `toml:"lpr"`
	Lpstat string `toml:"lpstat"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputPrefix: output.DefaultPrefix,
		Engines: Engines{
			Markup: slices.Clone(render.DefaultMarkupOrder),
			Raster: slices.Clone(render.DefaultRasterOrder),
		},
		Spool: Spool{
			Lpr:    dispatch.DefaultLpr,
			Lpstat: dispatch.DefaultLpstat,
		},
		Server: Server{Addr: DefaultAddr},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads path on top of the defaults. An empty path means [Path].
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	cfg.Engines.Markup = slices.Clone(base.Engines.Markup)
	cfg.Engines.Raster = slices.Clone(base.Engines.Raster)
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks engine names and kinds.
func (c Config) Validate() error {
	if err := validateEngines(c.Engines.Markup, label.KindMarkup); err != nil {
		return err
	}
	if err := validateEngines(c.Engines.Raster, label.KindRaster); err != nil {
		return err
	}
	if c.Timeout.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "timeout must not be negative, got %s", c.Timeout)
	}
	if c.DefaultPrinter != "" {
		if err := errs.ValidatePrinterName(c.DefaultPrinter); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "default_printer")
		}
	}
	return nil
}

func validateEngines(names []string, kind label.Kind) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		k, ok := render.KindOf(name)
		if !ok {
			return errs.New(errs.ErrCodeInvalidConfig, "unknown engine %q (known: %v)", name, render.Names())
		}
		if k != kind {
			return errs.New(errs.ErrCodeInvalidConfig, "engine %q renders %s input, listed under %s", name, k, kind)
		}
		if seen[name] {
			return errs.New(errs.ErrCodeInvalidConfig, "engine %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// EngineOrder returns the configured engines, markup first. Kinds are
// disjoint so the chain filters per job.
func (c Config) EngineOrder() []string {
	return slices.Concat(c.Engines.Markup, c.Engines.Raster)
}

// Encode writes the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
