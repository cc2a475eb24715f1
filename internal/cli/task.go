package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/core"
	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (add, assign, complete, backlog, update, delete, list)",
	Long: `Unified task management commands.

Add tasks to the shared backlog, assign them to developers, record
completions with the bounty payout, and move work back to the backlog.`,
}

var (
	taskAddDescription string
	taskAddPoints      int
	taskAddAssignee    string
	taskAddID          string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task to the backlog",
	Long: `Add a task to the shared backlog. The point value is the bounty credited
to whichever developer completes the task.

Use --assign to place the task directly in a developer's column; assigning
to an unseen developer id provisions a developer record automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		result := core.ValidateTaskForm(name, taskAddDescription, taskAddPoints)
		if !result.IsValid {
			printFieldErrors(result)
			return fmt.Errorf("invalid task")
		}

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		id := taskAddID
		if id == "" {
			id = newTaskID()
		}

		task := models.Task{
			ID:          id,
			Name:        name,
			Description: taskAddDescription,
			Points:      taskAddPoints,
			Status:      models.StatusBacklog,
			CreatedAt:   time.Now().UTC(),
		}
		if taskAddAssignee != "" {
			task.Status = models.StatusAssigned
			task.AssignedTo = taskAddAssignee
		}

		provisioned, err := board.AddTask(task)
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}
		reportProvisioned(provisioned)
		observability.Record(EventLog, observability.EventTaskCreated, "task created",
			map[string]any{"id": task.ID, "points": task.Points})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Added task %s\n", task.ID)
		fmt.Printf("  Name:   %s\n", task.Name)
		fmt.Printf("  Points: %d\n", task.Points)
		fmt.Printf("  Status: %s\n", task.Status)
		if task.AssignedTo != "" {
			fmt.Printf("  Dev:    %s\n", task.AssignedTo)
		}
		return nil
	},
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <developer-id>",
	Short: "Assign a task to a developer",
	Long: `Move a task into a developer's column. Assigning to a developer id that
does not exist yet provisions a developer record with a placeholder name.

Completed tasks are terminal and cannot be reassigned.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, devID := args[0], args[1]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		task := board.TaskByID(taskID)
		if task == nil {
			return fmt.Errorf("assigning task: task %s not found", taskID)
		}
		if task.Status == models.StatusCompleted {
			return fmt.Errorf("assigning task: task %s is completed and cannot be reassigned", taskID)
		}

		status := models.StatusAssigned
		provisioned, err := board.UpdateTask(taskID, core.TaskPatch{
			Status:     &status,
			AssignedTo: &devID,
		})
		if err != nil {
			return fmt.Errorf("assigning task: %w", err)
		}
		reportProvisioned(provisioned)
		observability.Record(EventLog, observability.EventTaskUpdated, "task assigned",
			map[string]any{"id": taskID, "developer": devID})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Assigned task %s to %s\n", taskID, devID)
		return nil
	},
}

var (
	taskCompleteHours    float64
	taskCompleteCommit   string
	taskCompleteComments string
)

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Complete a task and credit the bounty",
	Long: `Mark an assigned task completed, recording hours spent, the git commit
that finished the work, and a closing comment. The task's point value is
credited to the assigned developer's standings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]

		result := core.ValidateCompletionForm(taskCompleteHours, taskCompleteCommit, taskCompleteComments)
		if !result.IsValid {
			printFieldErrors(result)
			return fmt.Errorf("invalid completion")
		}

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		task := board.TaskByID(taskID)
		if task == nil {
			return fmt.Errorf("completing task: task %s not found", taskID)
		}
		if task.Status == models.StatusCompleted {
			return fmt.Errorf("completing task: task %s is already completed", taskID)
		}
		if task.AssignedTo == "" {
			return fmt.Errorf("completing task: task %s is not assigned to a developer", taskID)
		}

		now := time.Now().UTC()
		status := models.StatusCompleted
		if _, err := board.UpdateTask(taskID, core.TaskPatch{
			Status:      &status,
			CompletedAt: &now,
			CompletionDetails: &models.CompletionDetails{
				HoursSpent: taskCompleteHours,
				GitCommit:  strings.ToLower(strings.TrimSpace(taskCompleteCommit)),
				Comments:   taskCompleteComments,
			},
		}); err != nil {
			return fmt.Errorf("completing task: %w", err)
		}
		observability.Record(EventLog, observability.EventTaskCompleted, "task completed",
			map[string]any{
				"id":          taskID,
				"developer":   task.AssignedTo,
				"points":      task.Points,
				"hours_spent": taskCompleteHours,
			})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		dev := board.DeveloperByID(task.AssignedTo)
		fmt.Printf("Completed task %s (+%d points to %s)\n", taskID, task.Points, task.AssignedTo)
		if dev != nil {
			fmt.Printf("  %s now has %d points over %d completed tasks (%.1fh)\n",
				dev.Name, dev.TotalPoints, dev.CompletedTasks, dev.TotalHours)
		}
		return nil
	},
}

var taskBacklogCmd = &cobra.Command{
	Use:   "backlog <task-id>",
	Short: "Return an assigned task to the backlog",
	Long: `Move an assigned task back to the shared backlog, clearing its
assignment. Completed tasks are terminal and cannot be moved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		task := board.TaskByID(taskID)
		if task == nil {
			return fmt.Errorf("moving task to backlog: task %s not found", taskID)
		}
		if task.Status == models.StatusCompleted {
			return fmt.Errorf("moving task to backlog: task %s is completed", taskID)
		}

		status := models.StatusBacklog
		cleared := ""
		if _, err := board.UpdateTask(taskID, core.TaskPatch{
			Status:     &status,
			AssignedTo: &cleared,
		}); err != nil {
			return fmt.Errorf("moving task to backlog: %w", err)
		}
		observability.Record(EventLog, observability.EventTaskUpdated, "task returned to backlog",
			map[string]any{"id": taskID})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Moved task %s back to the backlog\n", taskID)
		return nil
	},
}

var (
	taskUpdateName        string
	taskUpdateDescription string
	taskUpdatePoints      int
)

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task's name, description, or points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		if board.TaskByID(taskID) == nil {
			return fmt.Errorf("updating task: task %s not found", taskID)
		}

		var patch core.TaskPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &taskUpdateName
		}
		if cmd.Flags().Changed("desc") {
			patch.Description = &taskUpdateDescription
		}
		if cmd.Flags().Changed("points") {
			if taskUpdatePoints <= 0 {
				return fmt.Errorf("updating task: points must be a positive integer")
			}
			patch.Points = &taskUpdatePoints
		}

		if _, err := board.UpdateTask(taskID, patch); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		observability.Record(EventLog, observability.EventTaskUpdated, "task updated",
			map[string]any{"id": taskID})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Updated task %s\n", taskID)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task from the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		if board.TaskByID(taskID) == nil {
			return fmt.Errorf("deleting task: task %s not found", taskID)
		}

		board.DeleteTask(taskID)
		observability.Record(EventLog, observability.EventTaskDeleted, "task deleted",
			map[string]any{"id": taskID})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Deleted task %s\n", taskID)
		return nil
	},
}

var (
	taskListStatus    string
	taskListDeveloper string
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by status or developer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		var tasks []models.Task
		switch {
		case taskListStatus != "":
			tasks = board.TasksByStatus(models.TaskStatus(taskListStatus))
		case taskListDeveloper != "":
			tasks = board.TasksByDeveloper(taskListDeveloper)
		default:
			tasks = board.State().Tasks
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks")
			return nil
		}
		for _, t := range tasks {
			line := fmt.Sprintf("%-14s %-9s %3dpt  %s", t.ID, t.Status, t.Points, t.Name)
			if t.AssignedTo != "" {
				line += fmt.Sprintf("  (%s)", t.AssignedTo)
			}
			fmt.Println(line)
		}
		return nil
	},
}

// completeTaskStatuses returns valid status values for shell completion.
func completeTaskStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"backlog\tUnassigned task pool",
		"assigned\tIn a developer's column",
		"completed\tFinished, bounty paid",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddDescription, "desc", "", "Task description")
	taskAddCmd.Flags().IntVar(&taskAddPoints, "points", 0, "Bounty point value (positive integer)")
	taskAddCmd.Flags().StringVar(&taskAddAssignee, "assign", "", "Assign directly to a developer id")
	taskAddCmd.Flags().StringVar(&taskAddID, "id", "", "Explicit task id (random when omitted)")

	taskCompleteCmd.Flags().Float64Var(&taskCompleteHours, "hours", 0, "Hours spent on the task")
	taskCompleteCmd.Flags().StringVar(&taskCompleteCommit, "commit", "", "Git commit hash (6-40 hex characters)")
	taskCompleteCmd.Flags().StringVar(&taskCompleteComments, "comments", "", "Closing comments")

	taskUpdateCmd.Flags().StringVar(&taskUpdateName, "name", "", "New task name")
	taskUpdateCmd.Flags().StringVar(&taskUpdateDescription, "desc", "", "New task description")
	taskUpdateCmd.Flags().IntVar(&taskUpdatePoints, "points", 0, "New bounty point value")

	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "Filter by status (backlog, assigned, completed)")
	taskListCmd.Flags().StringVar(&taskListDeveloper, "dev", "", "Filter by developer id")
	_ = taskListCmd.RegisterFlagCompletionFunc("status", completeTaskStatuses)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskBacklogCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskListCmd)

	rootCmd.AddCommand(taskCmd)
}
