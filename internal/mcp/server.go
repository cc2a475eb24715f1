// Package mcp provides an MCP (Model Context Protocol) server that
// exposes bounty board operations as tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/bounty-board/internal/core"
	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// Server wraps board services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	board       *core.Board
	metricsCalc observability.MetricsCalculator
	eventLog    observability.EventLog
}

// NewServer creates an MCP server over the given board. metricsCalc and
// eventLog may be nil if observability is disabled.
func NewServer(board *core.Board, metricsCalc observability.MetricsCalculator, eventLog observability.EventLog, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		board:       board,
		metricsCalc: metricsCalc,
		eventLog:    eventLog,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "bboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type addTaskInput struct {
	ID          string `json:"id,omitempty" jsonschema:"explicit task id; generated when omitted"`
	Name        string `json:"name" jsonschema:"required,short task name"`
	Description string `json:"description" jsonschema:"required,what the task involves"`
	Points      int    `json:"points" jsonschema:"required,bounty point value (positive integer)"`
	AssignedTo  string `json:"assigned_to,omitempty" jsonschema:"developer id to assign directly; an unseen id provisions a developer record"`
}

type taskOutput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Points      int     `json:"points"`
	Status      string  `json:"status"`
	AssignedTo  string  `json:"assigned_to,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt string  `json:"completed_at,omitempty"`
	HoursSpent  float64 `json:"hours_spent,omitempty"`
	GitCommit   string  `json:"git_commit,omitempty"`
}

type addTaskOutput struct {
	Task                 taskOutput `json:"task"`
	ProvisionedDeveloper string     `json:"provisioned_developer,omitempty"`
}

type assignTaskInput struct {
	TaskID      string `json:"task_id" jsonschema:"required,the task to assign"`
	DeveloperID string `json:"developer_id" jsonschema:"required,the developer's column to move it into"`
}

type completeTaskInput struct {
	TaskID     string  `json:"task_id" jsonschema:"required,the task to complete"`
	HoursSpent float64 `json:"hours_spent" jsonschema:"required,hours spent (greater than zero)"`
	GitCommit  string  `json:"git_commit" jsonschema:"required,git commit hash (6-40 hex characters)"`
	Comments   string  `json:"comments" jsonschema:"required,closing comments"`
}

type completeTaskOutput struct {
	Message   string `json:"message"`
	Developer string `json:"developer"`
	Points    int    `json:"points"`
}

type listTasksInput struct {
	Status      string `json:"status,omitempty" jsonschema:"filter by status (backlog, assigned, completed)"`
	DeveloperID string `json:"developer_id,omitempty" jsonschema:"filter by assigned developer id"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type developerOutput struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	TotalPoints    int     `json:"total_points"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalHours     float64 `json:"total_hours"`
}

type listDevelopersInput struct{}

type listDevelopersOutput struct {
	Developers []developerOutput `json:"developers"`
	Count      int               `json:"count"`
}

type getBoardInput struct{}

type getBoardOutput struct {
	Tasks      []taskOutput      `json:"tasks"`
	Developers []developerOutput `json:"developers"`
}

type removeDeveloperInput struct {
	DeveloperID string `json:"developer_id" jsonschema:"required,the developer to remove; their unfinished tasks return to the backlog"`
}

type removeDeveloperOutput struct {
	Message string `json:"message"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated          int     `json:"tasks_created"`
	TasksCompleted        int     `json:"tasks_completed"`
	TasksDeleted          int     `json:"tasks_deleted"`
	PointsAwarded         int     `json:"points_awarded"`
	HoursLogged           float64 `json:"hours_logged"`
	DevelopersProvisioned int     `json:"developers_provisioned"`
	SaveFailures          int     `json:"save_failures"`
	EventCount            int     `json:"event_count"`
	OldestEvent           string  `json:"oldest_event,omitempty"`
	NewestEvent           string  `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Add a task to the shared backlog, or directly to a developer's column when assigned_to is set.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "assign_task",
		Description: "Move a task into a developer's column. Assigning to an unseen developer id provisions a developer record.",
	}, s.handleAssignTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Complete an assigned task, recording hours, the finishing git commit, and comments. Credits the bounty to the assigned developer.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with optional status or developer filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_developers",
		Description: "List developers with their derived standings (points, completed tasks, hours).",
	}, s.handleListDevelopers)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_board",
		Description: "Get the whole board in one call: every task and every developer with derived standings.",
	}, s.handleGetBoard)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "remove_developer",
		Description: "Remove a developer. Unfinished tasks return to the backlog; completed tasks keep their payout history.",
	}, s.handleRemoveDeveloper)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated board activity from the event log: task counts, points awarded, hours logged.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, addTaskOutput, error) {
	result := core.ValidateTaskForm(input.Name, input.Description, input.Points)
	if !result.IsValid {
		return errorResult(validationMessage(result)), addTaskOutput{}, nil
	}

	id := input.ID
	if id == "" {
		id = fmt.Sprintf("task-%d", time.Now().UnixNano())
	}

	task := models.Task{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Points:      input.Points,
		Status:      models.StatusBacklog,
		CreatedAt:   time.Now().UTC(),
	}
	if input.AssignedTo != "" {
		task.Status = models.StatusAssigned
		task.AssignedTo = input.AssignedTo
	}

	provisioned, err := s.board.AddTask(task)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), addTaskOutput{}, nil
	}

	observability.Record(s.eventLog, observability.EventTaskCreated, "task created",
		map[string]any{"id": task.ID, "points": task.Points})

	out := addTaskOutput{Task: taskToOutput(task)}
	if provisioned != nil {
		out.ProvisionedDeveloper = provisioned.ID
		observability.Record(s.eventLog, observability.EventDeveloperProvisioned,
			"developer auto-provisioned", map[string]any{"id": provisioned.ID, "name": provisioned.Name})
	}
	return nil, out, nil
}

func (s *Server) handleAssignTask(_ context.Context, _ *gomcp.CallToolRequest, input assignTaskInput) (*gomcp.CallToolResult, addTaskOutput, error) {
	if input.TaskID == "" || input.DeveloperID == "" {
		return errorResult("task_id and developer_id are required"), addTaskOutput{}, nil
	}

	task := s.board.TaskByID(input.TaskID)
	if task == nil {
		return errorResult(fmt.Sprintf("task %s not found", input.TaskID)), addTaskOutput{}, nil
	}
	if task.Status == models.StatusCompleted {
		return errorResult(fmt.Sprintf("task %s is completed and cannot be reassigned", input.TaskID)), addTaskOutput{}, nil
	}

	status := models.StatusAssigned
	provisioned, err := s.board.UpdateTask(input.TaskID, core.TaskPatch{
		Status:     &status,
		AssignedTo: &input.DeveloperID,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("assigning task: %s", err)), addTaskOutput{}, nil
	}

	observability.Record(s.eventLog, observability.EventTaskUpdated, "task assigned",
		map[string]any{"id": input.TaskID, "developer": input.DeveloperID})

	// The task can vanish between the update and the read-back when
	// another caller deletes it; report that instead of dereferencing nil.
	updated := s.board.TaskByID(input.TaskID)
	if updated == nil {
		return errorResult(fmt.Sprintf("task %s was removed while being assigned", input.TaskID)), addTaskOutput{}, nil
	}
	out := addTaskOutput{Task: taskToOutput(*updated)}
	if provisioned != nil {
		out.ProvisionedDeveloper = provisioned.ID
		observability.Record(s.eventLog, observability.EventDeveloperProvisioned,
			"developer auto-provisioned", map[string]any{"id": provisioned.ID, "name": provisioned.Name})
	}
	return nil, out, nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input completeTaskInput) (*gomcp.CallToolResult, completeTaskOutput, error) {
	result := core.ValidateCompletionForm(input.HoursSpent, input.GitCommit, input.Comments)
	if !result.IsValid {
		return errorResult(validationMessage(result)), completeTaskOutput{}, nil
	}

	task := s.board.TaskByID(input.TaskID)
	if task == nil {
		return errorResult(fmt.Sprintf("task %s not found", input.TaskID)), completeTaskOutput{}, nil
	}
	if task.Status == models.StatusCompleted {
		return errorResult(fmt.Sprintf("task %s is already completed", input.TaskID)), completeTaskOutput{}, nil
	}
	if task.AssignedTo == "" {
		return errorResult(fmt.Sprintf("task %s is not assigned to a developer", input.TaskID)), completeTaskOutput{}, nil
	}

	now := time.Now().UTC()
	status := models.StatusCompleted
	if _, err := s.board.UpdateTask(input.TaskID, core.TaskPatch{
		Status:      &status,
		CompletedAt: &now,
		CompletionDetails: &models.CompletionDetails{
			HoursSpent: input.HoursSpent,
			GitCommit:  strings.ToLower(strings.TrimSpace(input.GitCommit)),
			Comments:   input.Comments,
		},
	}); err != nil {
		return errorResult(fmt.Sprintf("completing task: %s", err)), completeTaskOutput{}, nil
	}

	observability.Record(s.eventLog, observability.EventTaskCompleted, "task completed",
		map[string]any{
			"id":          input.TaskID,
			"developer":   task.AssignedTo,
			"points":      task.Points,
			"hours_spent": input.HoursSpent,
		})

	out := completeTaskOutput{
		Message:   fmt.Sprintf("task %s completed, %d points credited to %s", input.TaskID, task.Points, task.AssignedTo),
		Developer: task.AssignedTo,
		Points:    task.Points,
	}
	return nil, out, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var tasks []models.Task
	switch {
	case input.Status != "":
		status := models.TaskStatus(input.Status)
		switch status {
		case models.StatusBacklog, models.StatusAssigned, models.StatusCompleted:
		default:
			return errorResult(fmt.Sprintf("invalid status %q: must be one of backlog, assigned, completed", input.Status)), listTasksOutput{}, nil
		}
		tasks = s.board.TasksByStatus(status)
	case input.DeveloperID != "":
		tasks = s.board.TasksByDeveloper(input.DeveloperID)
	default:
		tasks = s.board.State().Tasks
	}

	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleListDevelopers(_ context.Context, _ *gomcp.CallToolRequest, _ listDevelopersInput) (*gomcp.CallToolResult, listDevelopersOutput, error) {
	developers := s.board.State().Developers

	out := listDevelopersOutput{
		Developers: make([]developerOutput, len(developers)),
		Count:      len(developers),
	}
	for i, d := range developers {
		out.Developers[i] = developerOutput{
			ID:             d.ID,
			Name:           d.Name,
			TotalPoints:    d.TotalPoints,
			CompletedTasks: d.CompletedTasks,
			TotalHours:     d.TotalHours,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetBoard(_ context.Context, _ *gomcp.CallToolRequest, _ getBoardInput) (*gomcp.CallToolResult, getBoardOutput, error) {
	state := s.board.State()

	out := getBoardOutput{
		Tasks:      make([]taskOutput, len(state.Tasks)),
		Developers: make([]developerOutput, len(state.Developers)),
	}
	for i, t := range state.Tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	for i, d := range state.Developers {
		out.Developers[i] = developerOutput{
			ID:             d.ID,
			Name:           d.Name,
			TotalPoints:    d.TotalPoints,
			CompletedTasks: d.CompletedTasks,
			TotalHours:     d.TotalHours,
		}
	}
	return nil, out, nil
}

func (s *Server) handleRemoveDeveloper(_ context.Context, _ *gomcp.CallToolRequest, input removeDeveloperInput) (*gomcp.CallToolResult, removeDeveloperOutput, error) {
	if input.DeveloperID == "" {
		return errorResult("developer_id is required"), removeDeveloperOutput{}, nil
	}
	if s.board.DeveloperByID(input.DeveloperID) == nil {
		return errorResult(fmt.Sprintf("developer %s not found", input.DeveloperID)), removeDeveloperOutput{}, nil
	}

	s.board.DeleteDeveloper(input.DeveloperID)
	observability.Record(s.eventLog, observability.EventDeveloperRemoved, "developer removed",
		map[string]any{"id": input.DeveloperID})

	out := removeDeveloperOutput{
		Message: fmt.Sprintf("developer %s removed; unfinished tasks returned to the backlog", input.DeveloperID),
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		TasksCreated:          metrics.TasksCreated,
		TasksCompleted:        metrics.TasksCompleted,
		TasksDeleted:          metrics.TasksDeleted,
		PointsAwarded:         metrics.PointsAwarded,
		HoursLogged:           metrics.HoursLogged,
		DevelopersProvisioned: metrics.DevelopersProvisioned,
		SaveFailures:          metrics.SaveFailures,
		EventCount:            metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Points:      t.Points,
		Status:      string(t.Status),
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	if t.CompletionDetails != nil {
		out.HoursSpent = t.CompletionDetails.HoursSpent
		out.GitCommit = t.CompletionDetails.GitCommit
	}
	return out
}

func validationMessage(result core.ValidationResult) string {
	parts := make([]string, len(result.Errors))
	for i, fe := range result.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
