package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			out := os.Stdout
			if path, _ := cmd.Flags().GetString("out"); path != "" {
				file, err := os.Create(path)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			return s.ExportJSON(cmd.Context(), out)
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import tasks from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			count, err := s.ImportJSON(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d tasks\n", count)
			return nil
		},
	}
}
