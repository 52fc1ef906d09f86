package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/shipment-label-extractor/config"
	"github.com/Aashish23092/shipment-label-extractor/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve label extraction as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg, true)

		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		srv, err := mcpserver.NewServer("shipment-label-extractor", version, comps.labels, cfg.MaxFileSize)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
