package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *CLI) printersCommand() *cobra.Command {
	var onlyDefault bool

	cmd := &cobra.Command{
		Use:   "printers",
		Short: "List available print queues",
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
			return runPrinters(cmd.Context(), runner, onlyDefault)
		},
	}

	cmd.Flags().BoolVar(&onlyDefault, "default", false, "print only the system default queue")
	return cmd
}

func runPrinters(ctx context.Context, src printerSource, onlyDefault bool) error {
	def, err := src.DefaultPrinter(ctx)
	if err != nil {
		loggerFromContext(ctx).Debug("no default printer", "err", err)
	}

	if onlyDefault {
		if def == "" {
			printWarning("No system default printer")
			return nil
		}
		fmt.Fprintln(stdout, def)
		return nil
	}

	printers, err := src.Printers(ctx)
	if err != nil {
		return err
	}
	if len(printers) == 0 {
		printInfo("No printers found")
		return nil
	}
	fmt.Fprintln(stdout, printersTable(printers, def))
	return nil
}

func printersTable(printers []string, def string) string {
	rows := make([][]string, len(printers))
	for i, p := range printers {
		mark := ""
		if p == def {
			mark = iconSuccess
		}
		rows[i] = []string{strconv.Itoa(i + 1), p, mark}
	}
	return renderTable([]string{"#", "Printer", "Default"}, rows)
}
