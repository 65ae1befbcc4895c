package cli

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/labelprint/pkg/config"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/pipeline"
)

func TestBuildRequest(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "label.html")
	pngPath := filepath.Join(dir, "label.png")
	if err := os.WriteFile(htmlPath, []byte("<b>ship</b>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pngPath, []byte("\x89PNG\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("html file", func(t *testing.T) {
		req, err := buildRequest(generateOpts{htmlFile: htmlPath, width: 62, height: 29}, nil)
		if err != nil {
			t.Fatalf("buildRequest() error: %v", err)
		}
		if req.HTML != "<b>ship</b>" || req.Image != "" {
			t.Errorf("req = %+v, want HTML only", req)
		}
		if req.WidthMM != 62 || req.HeightMM != 29 {
			t.Errorf("size = %vx%v, want 62x29", req.WidthMM, req.HeightMM)
		}
	})

	t.Run("image file is base64 encoded", func(t *testing.T) {
		req, err := buildRequest(generateOpts{imageFile: pngPath, width: 62, height: 100}, nil)
		if err != nil {
			t.Fatalf("buildRequest() error: %v", err)
		}
		if want := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n")); req.Image != want {
			t.Errorf("Image = %q, want %q", req.Image, want)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		req, err := buildRequest(generateOpts{htmlFile: "-", width: 10, height: 10}, strings.NewReader("<p>in</p>"))
		if err != nil {
			t.Fatalf("buildRequest() error: %v", err)
		}
		if req.HTML != "<p>in</p>" {
			t.Errorf("HTML = %q, want stdin contents", req.HTML)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := buildRequest(generateOpts{htmlFile: filepath.Join(dir, "nope.html")}, nil)
		if !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("error code = %q, want %q", errs.GetCode(err), errs.ErrCodeInvalidInput)
		}
	})

	t.Run("no source", func(t *testing.T) {
		_, err := buildRequest(generateOpts{width: 10, height: 10}, nil)
		if !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("error code = %q, want %q", errs.GetCode(err), errs.ErrCodeInvalidInput)
		}
	})
}

func TestBuildRequestZeroWidthFailsValidation(t *testing.T) {
	req, err := buildRequest(generateOpts{htmlFile: "-", width: 0, height: 30}, strings.NewReader("<p>x</p>"))
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}
	if _, err := req.Spec(); !errs.Is(err, errs.ErrCodeInvalidDimensions) {
		t.Errorf("Spec() error code = %q, want %q", errs.GetCode(err), errs.ErrCodeInvalidDimensions)
	}
}

type fakePrinters struct {
	printers []string
	def      string
}

func (f fakePrinters) Printers(context.Context) ([]string, error)     { return f.printers, nil }
func (f fakePrinters) DefaultPrinter(context.Context) (string, error) { return f.def, nil }

func TestResolvePrinter(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultPrinter = "Configured"
	src := fakePrinters{printers: []string{"A", "B"}, def: "B"}

	tests := []struct {
		name string
		opts generateOpts
		cfg  config.Config
		want string
	}{
		{"explicit printer", generateOpts{printer: "Zebra"}, cfg, "Zebra"},
		{"configured default", generateOpts{}, cfg, "Configured"},
		{"view overrides default", generateOpts{view: true}, cfg, ""},
		{"no default means viewer", generateOpts{}, config.Default(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePrinter(context.Background(), tt.opts, tt.cfg, src)
			if err != nil {
				t.Fatalf("resolvePrinter() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolvePrinter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePrinterPickWithoutPrinters(t *testing.T) {
	_, err := resolvePrinter(context.Background(), generateOpts{pick: true}, config.Default(), fakePrinters{printers: []string{}})
	if !errs.Is(err, errs.ErrCodePrintersUnavailable) {
		t.Errorf("error code = %q, want %q", errs.GetCode(err), errs.ErrCodePrintersUnavailable)
	}
}

func TestGenerateCommandZeroWidth(t *testing.T) {
	captureStdout(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "label.html")
	if err := os.WriteFile(htmlPath, []byte("<b>x</b>"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"generate", "--html", htmlPath, "--width", "0", "--height", "30", "--view"})
	err := root.Execute()
	if !errs.Is(err, errs.ErrCodeInvalidDimensions) {
		t.Errorf("Execute() error = %v, want %s", err, errs.ErrCodeInvalidDimensions)
	}
}

func TestPrintResult(t *testing.T) {
	out := captureStdout(t)
	printResult(&pipeline.Result{
		Message:     "Printed to BrotherQL",
		PDFPath:     "/tmp/label_1.pdf",
		Engine:      "img2pdf",
		Destination: label.Printer{Name: "BrotherQL"},
	})
	for _, want := range []string{"Printed to BrotherQL", "img2pdf", "/tmp/label_1.pdf"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("printResult output missing %q:\n%s", want, out)
		}
	}
}
