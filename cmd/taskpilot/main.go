package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskpilot/internal/config"
	"taskpilot/internal/store"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskpilot",
		Short:   "taskpilot - task organizer with recurrence and reminders",
		Version: Version,
	}

	rootCmd.PersistentFlags().String("config", "", "config file path")
	rootCmd.PersistentFlags().String("db", "", "sqlite db path")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(dueCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		resolved, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
		path = resolved
	}

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, config.Config{}, err
		}
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	return store.NewStore(db), cfg, nil
}
