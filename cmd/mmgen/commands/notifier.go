package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/elecmate/mmgen/internal/workflow"
)

// toastNotifier prints workflow notifications as styled lines.
type toastNotifier struct {
	w      io.Writer
	styles map[workflow.Level]lipgloss.Style
}

func newToastNotifier(w io.Writer, noColor bool) toastNotifier {
	styles := map[workflow.Level]lipgloss.Style{
		workflow.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		workflow.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		workflow.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
	if noColor {
		for l := range styles {
			styles[l] = lipgloss.NewStyle()
		}
	}
	return toastNotifier{w: w, styles: styles}
}

func (t toastNotifier) Notify(level workflow.Level, message string) {
	fmt.Fprintln(t.w, t.styles[level].Render(fmt.Sprintf("[%s] %s", level, message)))
}
