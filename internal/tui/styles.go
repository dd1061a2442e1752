package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e4e4ec"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5a5a6e"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f0c674"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8c8d4"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8aa0"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81a2be"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#cc6666"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b5bd68"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8aa0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5a5a6e"))
)

func helpLine(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpKeyStyle.Render(pairs[i])+" "+helpLabelStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
