package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskpilot/internal/notify"
)

func dueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show tasks due within the reminder window",
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
			if raw, _ := cmd.Flags().GetString("window"); raw != "" {
				parsed, err := time.ParseDuration(raw)
				if err != nil || parsed <= 0 {
					return fmt.Errorf("invalid window %q", raw)
				}
				window = parsed
			}

			tasks, err := s.DueSoon(cmd.Context(), time.Now(), window)
			if err != nil {
				return err
			}

			if send, _ := cmd.Flags().GetBool("notify"); send {
				notifier := notify.Console{Out: os.Stdout}
				for _, task := range tasks {
					if err := notifier.Notify(task); err != nil {
						return err
					}
				}
				return nil
			}

			printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().StringP("window", "w", "", "Look-ahead window, e.g. 30m, 2h (default from config)")
	cmd.Flags().Bool("notify", false, "Emit one reminder line per task")

	return cmd
}
