// Package ui holds the interactive terminal views: the live dashboard
// watch and the upload progress screen.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the styled components shared by the views.
type Styles struct {
	Title   lipgloss.Style
	Panel   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Error   lipgloss.Style
	Notice  lipgloss.Style
	Footer  lipgloss.Style
	BarFill lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		BarFill: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
}
