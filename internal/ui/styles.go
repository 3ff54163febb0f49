package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the models.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Required lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Hint     lipgloss.Style
	Form     lipgloss.Style
	Value    lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#005f87", Dark: "#5fafff"}
	muted := lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#8a8a8a"}
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Label: lipgloss.NewStyle().
			Width(28),
		Focused: lipgloss.NewStyle().
			Width(28).
			Foreground(accent).
			Bold(true),
		Required: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d75f00")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d70000")),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Hint: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Form: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginTop(1),
		Value: lipgloss.NewStyle().
			Bold(true),
	}
}
