package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			input := engine.TaskInput{Title: args[0]}
			input.Description, _ = cmd.Flags().GetString("description")
			input.Status, _ = cmd.Flags().GetString("status")
			input.Priority, _ = cmd.Flags().GetString("priority")
			input.Recurrence, _ = cmd.Flags().GetString("recurrence")
			if tags, _ := cmd.Flags().GetString("tags"); tags != "" {
				input.Tags = model.SplitTags(tags)
			}
			if due, _ := cmd.Flags().GetString("due"); due != "" {
				parsed, err := model.ParseDueDate(due)
				if err != nil {
					return err
				}
				input.DueDate = &parsed
			}

			task, err := s.CreateTask(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Printf("created #%d %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().String("status", "", "Status (pending, in_progress, completed)")
	cmd.Flags().StringP("priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringP("recurrence", "r", "", "Recurrence (daily, weekly, monthly)")

	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			var filter model.Filter
			if name, _ := cmd.Flags().GetString("view"); name != "" {
				view, err := s.GetViewByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				filter = view.Filter
			}

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

			spec := model.SortSpec{}
			sortBy, _ := cmd.Flags().GetString("sort-by")
			if sortBy == "" {
				sortBy = cfg.DefaultSort
			}
			if sortBy != "" {
				field, ok := model.ParseSortField(sortBy)
				if !ok {
					return fmt.Errorf("unknown sort field %q", sortBy)
				}
				spec.Field = field
				spec.Order = model.Ascending
			}
			if raw, _ := cmd.Flags().GetString("order"); raw != "" {
				order, ok := model.ParseSortOrder(raw)
				if !ok {
					return fmt.Errorf("unknown sort order %q", raw)
				}
				spec.Order = order
			}

			tasks, err := s.ListTasks(cmd.Context(), filter, spec)
			if err != nil {
				return err
			}
			printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("priority", "", "Filter by priority")
	cmd.Flags().String("tags", "", "Filter by tags (comma-separated, all must match)")
	cmd.Flags().String("search", "", "Filter by keyword in title or description")
	cmd.Flags().String("from", "", "Created on or after (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Created on or before (YYYY-MM-DD)")
	cmd.Flags().String("sort-by", "", "Sort field (priority, due_date, created_at, title)")
	cmd.Flags().String("order", "", "Sort order (asc, desc)")
	cmd.Flags().String("view", "", "Apply a saved view")

	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search tasks by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			tasks, err := s.SearchTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTasks(tasks)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one task with its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			task, err := s.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			printTaskDetail(task)

			history, err := s.ListHistory(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			if len(history) > 0 {
				fmt.Println("history:")
				for _, entry := range history {
					fmt.Printf("  %s  %s\n", entry.CreatedAt.Format(model.DueDateLayout), entry.Details)
				}
			}
			return nil
		},
	}
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			var patch engine.Patch
			patch.Title = changedString(cmd, "title")
			patch.Description = changedString(cmd, "description")
			patch.Status = changedString(cmd, "status")
			patch.Priority = changedString(cmd, "priority")
			patch.Recurrence = changedString(cmd, "recurrence")
			if cmd.Flags().Changed("tags") {
				raw, _ := cmd.Flags().GetString("tags")
				patch.Tags = model.SplitTags(raw)
				if patch.Tags == nil {
					patch.Tags = []string{}
				}
			}
			patch.ClearDueDate, _ = cmd.Flags().GetBool("clear-due")
			if raw := changedString(cmd, "due"); raw != nil {
				due, err := model.ParseDueDate(*raw)
				if err != nil {
					return err
				}
				patch.DueDate = &due
			}

			task, err := s.UpdateTask(cmd.Context(), taskID, patch)
			if err != nil {
				return err
			}
			fmt.Printf("updated #%d %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("status", "", "New status")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("tags", "", "Replace tags (comma-separated, empty clears)")
	cmd.Flags().String("due", "", "New due date")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.Flags().String("recurrence", "", "New recurrence (empty clears)")

	return cmd
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [id]",
		Short: "Complete a task, spawning the next instance if it recurs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			completed, spawned, err := s.CompleteTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			fmt.Printf("completed #%d %s\n", completed.ID, completed.Title)
			if spawned != nil {
				fmt.Printf("next instance #%d due %s\n", spawned.ID, spawned.DueDate.Format(model.DueDateLayout))
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.DB.Close()

			if err := s.DeleteTask(cmd.Context(), taskID); err != nil {
				return err
			}
			fmt.Printf("deleted #%d\n", taskID)
			return nil
		},
	}
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func printTasks(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return
	}
	for _, task := range tasks {
		fmt.Println(formatTaskRow(task))
	}
}

func formatTaskRow(task model.Task) string {
	due := "-"
	if task.DueDate != nil {
		due = task.DueDate.Format(model.DueDateLayout)
	}
	tags := "-"
	if len(task.Tags) > 0 {
		tags = strings.Join(task.Tags, ",")
	}
	recur := ""
	if task.Recurrence != model.RecurNone {
		recur = " @" + string(task.Recurrence)
	}
	return fmt.Sprintf("#%-4d %-11s %-6s %-20s due %s  [%s]%s",
		task.ID, task.Status, task.Priority, truncate(task.Title, 20), due, tags, recur)
}

func truncate(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-1]) + "~"
}

func printTaskDetail(task model.Task) {
	fmt.Printf("#%d %s\n", task.ID, task.Title)
	if task.Description != "" {
		fmt.Printf("  %s\n", task.Description)
	}
	fmt.Printf("status: %s  priority: %s\n", task.Status, task.Priority)
	if len(task.Tags) > 0 {
		fmt.Printf("tags: %s\n", strings.Join(task.Tags, ","))
	}
	if task.DueDate != nil {
		fmt.Printf("due: %s\n", task.DueDate.Format(model.DueDateLayout))
	}
	if task.Recurrence != model.RecurNone {
		fmt.Printf("recurrence: %s\n", task.Recurrence)
	}
	if task.ParentTaskID != nil {
		fmt.Printf("spawned from: #%d\n", *task.ParentTaskID)
	}
	fmt.Printf("created: %s  updated: %s\n",
		task.CreatedAt.Format(model.DueDateLayout), task.UpdatedAt.Format(model.DueDateLayout))
}
