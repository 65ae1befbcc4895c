package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelprint/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the label API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			runner, err := c.newRunner(cfg)
			if err != nil {
				return err
			}
			printKeyValue("listening", "http://"+cfg.Server.Addr)
			printKeyValue("engines", strings.Join(cfg.EngineOrder(), ", "))
			return server.New(runner, c.Logger).ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8765)")
	return cmd
}
