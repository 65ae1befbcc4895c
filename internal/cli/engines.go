package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelprint/pkg/config"
	"github.com/matzehuels/labelprint/pkg/render"
)

func (c *CLI) enginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "Show the renderer order and which engines are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, enginesTable(cfg, runner.Chain.Engines))
			return nil
		},
	}
}

// installer is implemented by engines that can check for their program.
type installer interface {
	Program() string
	Installed() bool
}

func enginesTable(cfg config.Config, engines []render.Engine) string {
	var rows [][]string
	order := map[string]int{}
	for i, name := range cfg.Engines.Markup {
		order[name] = i + 1
	}
	for i, name := range cfg.Engines.Raster {
		order[name] = i + 1
	}

	for _, e := range engines {
		program, status := "", "unknown"
		if inst, ok := e.(installer); ok {
			program = inst.Program()
			status = StyleWarning.Render("missing")
			if inst.Installed() {
				status = StyleSuccess.Render("installed")
			}
		}
		rows = append(rows, []string{
			string(e.Kind()),
			strconv.Itoa(order[e.Name()]),
			e.Name(),
			program,
			e.Media().String(),
			status,
		})
	}
	return renderTable([]string{"Kind", "#", "Engine", "Program", "Media", "Status"}, rows)
}
