package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"taskpilot/internal/tui"
	"taskpilot/internal/web"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			port := cfg.WebPort
			if flagPort, _ := cmd.Flags().GetInt("port"); flagPort != 0 {
				port = flagPort
			}

			addr := fmt.Sprintf(":%d", port)
			log.Printf("taskpilot API listening at http://localhost%s", addr)
			return web.NewServer(s).Run(addr)
		},
	}
	cmd.Flags().IntP("port", "p", 0, "Listen port (default from config)")
	return cmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			window, err := cfg.Window()
			if err != nil {
				return err
			}
			return tui.Run(s, window)
		},
	}
}
