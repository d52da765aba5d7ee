package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved filter views",
	}
	cmd.AddCommand(viewSaveCmd())
	cmd.AddCommand(viewListCmd())
	cmd.AddCommand(viewDeleteCmd())
	return cmd
}

func viewSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Save the given filter flags under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			var filter model.Filter
			if raw, _ := cmd.Flags().GetString("status"); raw != "" {
				status, ok := model.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				filter.Status = &status
			}
			if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
				priority, ok := model.ParsePriority(raw)
				if !ok {
					return fmt.Errorf("unknown priority %q", raw)
				}
				filter.Priority = &priority
			}
			if raw, _ := cmd.Flags().GetString("tags"); raw != "" {
				tags, err := engine.NormalizeTags(model.SplitTags(raw))
				if err != nil {
					return err
				}
				filter.Tags = tags
			}
			if raw, _ := cmd.Flags().GetString("search"); raw != "" {
				filter.Keyword = raw
			}
			if raw, _ := cmd.Flags().GetString("from"); raw != "" {
				from, err := model.ParseDate(raw)
				if err != nil {
					return err
				}
				filter.CreatedFrom = &from
			}
			if raw, _ := cmd.Flags().GetString("to"); raw != "" {
				to, err := model.ParseDate(raw)
				if err != nil {
					return err
				}
				end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
				filter.CreatedTo = &end
			}
			if filter.Empty() {
				return fmt.Errorf("refusing to save an empty filter")
			}

			view, err := s.SaveView(cmd.Context(), model.View{Name: args[0], Filter: filter})
			if err != nil {
				return err
			}
			fmt.Printf("saved view %q (#%d)\n", view.Name, view.ID)
			return nil
		},
	}

	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("priority", "", "Filter by priority")
	cmd.Flags().String("tags", "", "Filter by tags (comma-separated)")
	cmd.Flags().String("search", "", "Filter by keyword")
	cmd.Flags().String("from", "", "Created on or after (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Created on or before (YYYY-MM-DD)")

	return cmd
}

func viewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			views, err := s.ListViews(cmd.Context())
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Println("no saved views")
				return nil
			}
			for _, view := range views {
				fmt.Printf("#%-4d %-20s %s\n", view.ID, view.Name, describeFilter(view.Filter))
			}
			return nil
		},
	}
}

func viewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			view, err := s.GetViewByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteView(cmd.Context(), view.ID); err != nil {
				return err
			}
			fmt.Printf("deleted view %q\n", view.Name)
			return nil
		},
	}
}

func describeFilter(filter model.Filter) string {
	var parts []string
	if filter.Status != nil {
		parts = append(parts, "status="+string(*filter.Status))
	}
	if filter.Priority != nil {
		parts = append(parts, "priority="+string(*filter.Priority))
	}
	if len(filter.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(filter.Tags, ","))
	}
	if filter.Keyword != "" {
		parts = append(parts, "search="+filter.Keyword)
	}
	if filter.CreatedFrom != nil {
		parts = append(parts, "from="+filter.CreatedFrom.Format(model.DateLayout))
	}
	if filter.CreatedTo != nil {
		parts = append(parts, "to="+filter.CreatedTo.Format(model.DateLayout))
	}
	if len(parts) == 0 {
		return "(everything)"
	}
	return strings.Join(parts, " ")
}
