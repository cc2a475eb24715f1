package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// Style definitions for the board view.
var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	cardBacklogStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardAssignedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	cardCompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	pointsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)
	boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var boardWatch bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board",
	Long: `Render the board as columns: the shared backlog, one column per
developer, and the completed pile with bounty payouts.

Use --watch for a live view that refreshes periodically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if boardWatch {
			m := newBoardModel()
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err := p.Run()
			return err
		}

		board, err := openBoard(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(renderBoard(board.State(), 0))
		return nil
	},
}

// renderBoard lays the state out as bordered columns.
func renderBoard(state models.AppState, width int) string {
	columns := []string{renderColumn("Backlog", tasksWithStatus(state.Tasks, models.StatusBacklog), nil)}

	for _, dev := range state.Developers {
		var assigned []models.Task
		for _, t := range state.Tasks {
			if t.AssignedTo == dev.ID && t.Status == models.StatusAssigned {
				assigned = append(assigned, t)
			}
		}
		d := dev
		columns = append(columns, renderColumn(dev.Name, assigned, &d))
	}

	columns = append(columns, renderColumn("Completed", tasksWithStatus(state.Tasks, models.StatusCompleted), nil))

	title := boardTitleStyle.Render(" Bounty Board ")
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	if width > 0 && lipgloss.Width(body) > width {
		body = lipgloss.JoinVertical(lipgloss.Left, columns...)
	}
	return fmt.Sprintf("%s\n\n%s", title, body)
}

func renderColumn(header string, tasks []models.Task, dev *models.Developer) string {
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(header))
	if dev != nil {
		b.WriteString("\n")
		b.WriteString(pointsStyle.Render(fmt.Sprintf("%d pts", dev.TotalPoints)))
		b.WriteString(fmt.Sprintf(" · %d done · %.1fh", dev.CompletedTasks, dev.TotalHours))
	}
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString("  -")
	}
	for _, t := range tasks {
		card := fmt.Sprintf("%s (%dpt)", t.Name, t.Points)
		if t.Status == models.StatusCompleted && t.AssignedTo != "" {
			card += " → " + t.AssignedTo
		}
		b.WriteString("  " + styleForTaskStatus(t.Status).Render(card))
		b.WriteString("\n")
	}

	return columnStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func styleForTaskStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusBacklog:
		return cardBacklogStyle
	case models.StatusAssigned:
		return cardAssignedStyle
	case models.StatusCompleted:
		return cardCompletedStyle
	default:
		return lipgloss.NewStyle()
	}
}

func tasksWithStatus(tasks []models.Task, status models.TaskStatus) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// --- Live view ---

// boardRefreshInterval is how often the watch view reloads from the store.
const boardRefreshInterval = 5 * time.Second

type boardModel struct {
	width  int
	height int

	state   models.AppState
	loading bool
	err     error
}

// boardLoadedMsg carries a freshly loaded state back to the model.
type boardLoadedMsg struct {
	state models.AppState
	err   error
}

type boardTickMsg struct{}

func newBoardModel() boardModel {
	return boardModel{loading: true}
}

func loadBoardState() tea.Msg {
	board, err := openBoard(rootCmd.Context())
	if err != nil {
		return boardLoadedMsg{err: err}
	}
	return boardLoadedMsg{state: board.State()}
}

func boardTick() tea.Cmd {
	return tea.Tick(boardRefreshInterval, func(time.Time) tea.Msg {
		return boardTickMsg{}
	})
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(loadBoardState, boardTick())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadBoardState
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardTickMsg:
		return m, tea.Batch(loadBoardState, boardTick())

	case boardLoadedMsg:
		m.loading = false
		m.state = msg.state
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	help := boardHelpStyle.Render("r: refresh | q: quit")

	if m.loading && len(m.state.Tasks) == 0 && len(m.state.Developers) == 0 {
		return fmt.Sprintf("%s\n\n  Loading board...\n\n%s", boardTitleStyle.Render(" Bounty Board "), help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", boardTitleStyle.Render(" Bounty Board "), m.err, help)
	}

	status := ""
	if Writer != nil {
		switch {
		case Writer.Saving():
			status = "saving..."
		case !Writer.LastSavedAt().IsZero():
			status = "saved " + Writer.LastSavedAt().Format("15:04:05")
		}
	}
	if status != "" {
		status = boardHelpStyle.Render(status) + "\n"
	}

	return fmt.Sprintf("%s\n%s%s", renderBoard(m.state, m.width), status, help)
}

func init() {
	boardCmd.Flags().BoolVar(&boardWatch, "watch", false, "Live view, refreshed periodically")

	rootCmd.AddCommand(boardCmd)
}
