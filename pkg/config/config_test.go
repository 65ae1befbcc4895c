package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/labelprint/pkg/errors"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	if !slices.Equal(cfg.Engines.Markup, want.Engines.Markup) || !slices.Equal(cfg.Engines.Raster, want.Engines.Raster) {
		t.Errorf("Engines = %+v, want %+v", cfg.Engines, want.Engines)
	}
	if cfg.OutputPrefix != "label_" {
		t.Errorf("OutputPrefix = %q, want %q", cfg.OutputPrefix, "label_")
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Timeout.Duration != 0 {
		t.Errorf("Timeout = %v, want 0", cfg.Timeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
timeout = "45s"
default_printer = "BrotherQL"

[engines]
markup = ["chrome", "wkhtmltopdf"]

[chrome]
no_sandbox = true
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Timeout.Duration != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.DefaultPrinter != "BrotherQL" {
		t.Errorf("DefaultPrinter = %q, want %q", cfg.DefaultPrinter, "BrotherQL")
	}
	if want := []string{"chrome", "wkhtmltopdf"}; !slices.Equal(cfg.Engines.Markup, want) {
		t.Errorf("Engines.Markup = %v, want %v", cfg.Engines.Markup, want)
	}
	if want := Default().Engines.Raster; !slices.Equal(cfg.Engines.Raster, want) {
		t.Errorf("Engines.Raster = %v, want defaults %v", cfg.Engines.Raster, want)
	}
	if !cfg.Chrome.NoSandbox {
		t.Error("Chrome.NoSandbox = false, want true")
	}
	if cfg.Spool.Lpr != "lpr" {
		t.Errorf("Spool.Lpr = %q, want default", cfg.Spool.Lpr)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown engine", `[engines]` + "\n" + `markup = ["prince"]`},
		{"wrong kind", `[engines]` + "\n" + `raster = ["wkhtmltopdf"]`},
		{"duplicate", `[engines]` + "\n" + `raster = ["img2pdf", "img2pdf"]`},
		{"bad duration", `timeout = "soon"`},
		{"negative timeout", `timeout = "-1s"`},
		{"unknown key", `colour = "blue"`},
		{"bad printer", `default_printer = "-oops"`},
		{"syntax", `temp_dir = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), Default())
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error code = %q, want %q (err: %v)", errs.GetCode(err), errs.ErrCodeInvalidConfig, err)
			}
		})
	}
}

func TestPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	got, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", "labelprint", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestPathHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	got, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", "labelprint", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.Timeout.Duration = 90 * time.Second
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := string(data)
	for _, want := range []string{`timeout = "1m30s"`, `[engines]`, `"img2pdf"`, `addr = "127.0.0.1:8765"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode() missing %q in:\n%s", want, out)
		}
	}

	back, err := Parse(data, Default())
	if err != nil {
		t.Fatalf("Parse(Encode()) error: %v", err)
	}
	if back.Timeout != cfg.Timeout {
		t.Errorf("Timeout after reparse = %v, want %v", back.Timeout, cfg.Timeout)
	}
}
