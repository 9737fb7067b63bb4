// Package tui renders a provisioning run: a spinner with the current
// status, a progress bar, and a scrolling tail of process output. The
// provisioning itself runs in a background goroutine and feeds this model
// over a channel; the model never touches the core.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Messages sent by the provisioning goroutine.
type (
	// LogMsg is one process output or status log line.
	LogMsg string
	// StatusMsg replaces the headline status.
	StatusMsg string
	// ProgressMsg sets overall progress (0-100).
	ProgressMsg int
	// DoneMsg ends the program; Err is the fatal run error, if any.
	DoneMsg struct{ Err error }
)

// logTailLines is how many recent output lines stay visible.
const logTailLines = 10

// Color palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorDanger  = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F3F4F6"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	logLineStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)
)

// Model is the progress view for one provisioning run.
type Model struct {
	events <-chan tea.Msg

	spinner spinner.Model
	bar     progress.Model

	status  string
	percent int
	tail    []string
	width   int

	done bool
	err  error
}

// New builds the model. events carries LogMsg/StatusMsg/ProgressMsg and
// finally one DoneMsg.
func New(events <-chan tea.Msg) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	b := progress.New(progress.WithDefaultGradient())
	return Model{
		events:  events,
		spinner: s,
		bar:     b,
		status:  "Starting...",
		width:   80,
	}
}

// Err returns the fatal run error the DoneMsg carried, if any.
func (m Model) Err() error { return m.err }

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-6, 60)
		return m, nil

	case tea.KeyMsg:
		// No cancellation mid-run; package managers do not take kindly
		// to being killed halfway through. Keys are ignored until done.
		return m, nil

	case LogMsg:
		m.tail = append(m.tail, string(msg))
		if len(m.tail) > logTailLines {
			m.tail = m.tail[len(m.tail)-logTailLines:]
		}
		return m, m.waitForEvent()

	case StatusMsg:
		m.status = string(msg)
		return m, m.waitForEvent()

	case ProgressMsg:
		m.percent = int(msg)
		return m, m.waitForEvent()

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.percent = 100
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cliup"))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case m.done:
		b.WriteString(doneStyle.Render("✓ " + m.status))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString("\n\n")

	maxWidth := m.width - 4
	if maxWidth < 10 {
		maxWidth = 10
	}
	for _, line := range m.tail {
		b.WriteString(logLineStyle.Render("  " + ansi.Truncate(line, maxWidth, "…")))
		b.WriteString("\n")
	}

	return b.String()
}
