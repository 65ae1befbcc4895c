package cli

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ship.html", "<b>ship</b>")
	writeFile(t, dir, "logo.png", "png-bytes")
	path := writeFile(t, dir, "batch.toml", `
[[label]]
html_file = "ship.html"
width_mm = 62
height_mm = 29
printer_name = "BrotherQL"

[[label]]
image_file = "logo.png"
width_mm = 62
height_mm = 100

[[label]]
html = "<p>inline</p>"
width_mm = 50
height_mm = 25
`)

	specs, err := loadBatch(path)
	if err != nil {
		t.Fatalf("loadBatch() error: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("len(specs) = %d, want 3", len(specs))
	}

	if m, ok := specs[0].Content.(label.Markup); !ok || m.Text != "<b>ship</b>" {
		t.Errorf("specs[0].Content = %#v, want markup from ship.html", specs[0].Content)
	}
	if d, ok := specs[0].Destination.(label.Printer); !ok || d.Name != "BrotherQL" {
		t.Errorf("specs[0].Destination = %v, want printer BrotherQL", specs[0].Destination)
	}

	r, ok := specs[1].Content.(label.Raster)
	if !ok {
		t.Fatalf("specs[1].Content = %#v, want raster", specs[1].Content)
	}
	if want := base64.StdEncoding.EncodeToString([]byte("png-bytes")); r.Data != want {
		t.Errorf("raster data = %q, want %q", r.Data, want)
	}
	if _, ok := specs[1].Destination.(label.ViewDefault); !ok {
		t.Errorf("specs[1].Destination = %v, want viewer", specs[1].Destination)
	}

	if specs[2].WidthMM != 50 || specs[2].HeightMM != 25 {
		t.Errorf("specs[2] size = %v, want 50x25", specs[2].Size())
	}
}

func TestLoadBatchErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
		msg     string
	}{
		{
			name:    "no labels",
			content: "# empty\n",
			code:    errs.ErrCodeInvalidInput,
		},
		{
			name:    "bad toml",
			content: "[[label]\n",
			code:    errs.ErrCodeInvalidInput,
		},
		{
			name:    "zero width in second label",
			content: "[[label]]\nhtml = \"a\"\nwidth_mm = 10\nheight_mm = 10\n\n[[label]]\nhtml = \"b\"\nwidth_mm = 0\nheight_mm = 10\n",
			code:    errs.ErrCodeInvalidDimensions,
			msg:     "label 2",
		},
		{
			name:    "missing html file",
			content: "[[label]]\nhtml_file = \"nope.html\"\nwidth_mm = 10\nheight_mm = 10\n",
			code:    errs.ErrCodeInvalidInput,
			msg:     "label 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "batch.toml", tt.content)
			_, err := loadBatch(path)
			if !errs.Is(err, tt.code) {
				t.Fatalf("loadBatch() error = %v, want code %s", err, tt.code)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	fail  float64 // width that fails
}

func (g *fakeGenerator) Generate(_ context.Context, spec label.Spec) (*pipeline.Result, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if spec.WidthMM == g.fail {
		return nil, errs.New(errs.ErrCodeEngineRejected, "all engines rejected the label")
	}
	return &pipeline.Result{Message: "Opened label", PDFPath: "/tmp/label.pdf"}, nil
}

func batchSpec(width float64) label.Spec {
	return label.Spec{
		Content:     label.Markup{Text: "<p>x</p>"},
		WidthMM:     width,
		HeightMM:    30,
		Destination: label.ViewDefault{},
	}
}

func TestRunBatchContinuesPastFailures(t *testing.T) {
	out := captureStdout(t)
	gen := &fakeGenerator{fail: 20}
	specs := []label.Spec{batchSpec(10), batchSpec(20), batchSpec(30)}

	err := runBatch(context.Background(), gen, specs, 2)
	if err == nil || err.Error() != "1 of 3 labels failed" {
		t.Errorf("runBatch() error = %v, want 1 of 3 labels failed", err)
	}
	if gen.calls != 3 {
		t.Errorf("Generate called %d times, want 3", gen.calls)
	}
	for _, want := range []string{"label 1: Opened label", "label 2: all engines rejected the label", "label 3: Opened label"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunBatchAllSucceed(t *testing.T) {
	captureStdout(t)
	gen := &fakeGenerator{}
	if err := runBatch(context.Background(), gen, []label.Spec{batchSpec(10), batchSpec(20)}, 0); err != nil {
		t.Errorf("runBatch() error: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("Generate called %d times, want 2", gen.calls)
	}
}
