package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type styles struct {
	title    lipgloss.Style
	name     lipgloss.Style
	ctype    lipgloss.Style
	offset   lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	help     lipgloss.Style
}

// newStyles returns colored styles, or unstyled ones when output is not a
// terminal.
func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		name:   lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		ctype:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		offset: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD580")),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
		ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		err:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		help: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
