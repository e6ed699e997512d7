package main

import (
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the meal plan HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		addr := serveAddr
		if addr == "" {
			addr = ":" + a.Config().Port
		}
		return a.Server().Run(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :$PORT)")
	rootCmd.AddCommand(serveCmd)
}
