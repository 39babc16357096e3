package confirm

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the confirmation board.
type Styles struct {
	Title        lipgloss.Style
	Column       lipgloss.Style
	ColumnTitle  lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	URL          lipgloss.Style
	Empty        lipgloss.Style
	Help         lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // column borders

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Column: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		ColumnTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Item: lipgloss.NewStyle().
			Foreground(primary),

		ItemSelected: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			MarginTop(1),

		HintKey: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
