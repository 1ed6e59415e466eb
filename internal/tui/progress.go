// Package tui has the terminal views of the generation flow.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elecmate/mmgen/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

const maxBarWidth = 60

// JobUpdateMsg delivers a polled job snapshot to the view.
type JobUpdateMsg struct {
	Job model.Job
}

// PollDoneMsg tells the view polling has finished.
type PollDoneMsg struct {
	Err error
}

// ProgressModel is the processing view: a spinner, the current step and a progress bar.
type ProgressModel struct {
	title   string
	bar     progress.Model
	spinner spinner.Model

	percent   int
	step      string
	status    model.JobStatus
	errMsg    string
	done      bool
	cancelled bool
}

// NewProgressModel returns a new processing view.
func NewProgressModel(title string) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return ProgressModel{
		title:   title,
		bar:     bar,
		spinner: s,
		status:  model.JobStatusPending,
	}
}

// Init satisfies tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update satisfies tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case JobUpdateMsg:
		j := msg.Job
		m.status = j.Status
		if j.Progress > m.percent {
			m.percent = j.Progress
		}
		if j.CurrentStep != "" {
			m.step = j.CurrentStep
		}
		if j.Status.Terminal() {
			m.done = true
			m.errMsg = j.ErrorMessage
			if j.Status == model.JobStatusCompleted {
				m.percent = 100
			}
			return m, tea.Quit
		}
		return m, nil

	case PollDoneMsg:
		m.done = true
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View satisfies tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title) + "\n\n")

	switch {
	case m.status == model.JobStatusCompleted:
		b.WriteString(okStyle.Render("Method ready") + "\n")
	case m.errMsg != "":
		b.WriteString(errorStyle.Render("Generation failed: "+m.errMsg) + "\n")
	case m.cancelled:
		b.WriteString(mutedStyle.Render("Cancelling...") + "\n")
	default:
		step := m.step
		if step == "" {
			step = "Waiting for a worker"
		}
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), step)
	}

	b.WriteString("\n" + m.bar.ViewAs(float64(m.percent)/100) + "\n")

	if !m.done && !m.cancelled {
		b.WriteString("\n" + mutedStyle.Render("q/esc: cancel generation") + "\n")
	}

	return b.String()
}

// Percent returns the last progress shown.
func (m ProgressModel) Percent() int { return m.percent }

// Cancelled returns true when the user asked to cancel.
func (m ProgressModel) Cancelled() bool { return m.cancelled }

// Done returns true when the job reached a terminal status or polling stopped.
func (m ProgressModel) Done() bool { return m.done }
