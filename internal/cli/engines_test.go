package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/labelprint/pkg/command/commandtest"
	"github.com/matzehuels/labelprint/pkg/config"
	"github.com/matzehuels/labelprint/pkg/render"
)

func TestEnginesTable(t *testing.T) {
	cfg := config.Default()
	engines, err := render.Resolve(cfg.EngineOrder(), render.Options{Runner: commandtest.New()})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	table := enginesTable(cfg, engines)
	for _, name := range cfg.EngineOrder() {
		if !strings.Contains(table, name) {
			t.Errorf("table missing engine %q:\n%s", name, table)
		}
	}
	for _, want := range []string{"Kind", "Media", "markup", "raster"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}
