package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: lime accent on gray.
const (
	ColorLime     = "154" // Primary accent (#AFFF00)
	ColorLimeDim  = "106" // Inactive accent
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, context lines
	ColorRed      = "196" // Errors
)

// Styles holds all viewer styles.
type Styles struct {
	Header   lipgloss.Style
	Selected lipgloss.Style
	Match    lipgloss.Style
	Context  lipgloss.Style
	Label    lipgloss.Style
	Error    lipgloss.Style
	Dim      lipgloss.Style
	Spinner  lipgloss.Style
	Panel    lipgloss.Style
}

// DefaultStyles returns the colored viewer styles.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Match:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Context:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Spinner:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components, keeping the panel borders.
func NoColorStyles() Styles {
	return Styles{
		Panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
