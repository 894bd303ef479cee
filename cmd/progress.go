package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/postline/cli/internal/media"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// progressRenderer draws an in-place progress bar on the terminal. When
// stdout is not a TTY (CI, pipes) it stays silent; machine consumers use
// --json instead.
type progressRenderer struct {
	bar     progress.Model
	enabled bool
}

func newProgressRenderer() *progressRenderer {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &progressRenderer{
		bar:     bar,
		enabled: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (r *progressRenderer) Update(p media.Progress) {
	if !r.enabled {
		return
	}
	pct := p.Percent()
	fmt.Printf("\r%s %3d%%  %d / %d bytes", r.bar.ViewAs(float64(pct)/100), pct, p.Offset, p.TotalSize)
}
