package tui

import "github.com/charmbracelet/lipgloss"

const (
	borderColor  = lipgloss.Color("#626262")
	focusedColor = lipgloss.Color("#04B575")
	chipColor    = lipgloss.Color("#FFEAA7")
	redSuitColor = lipgloss.Color("#FF6B6B")
)

// Pane chrome
var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	promptStyle = lipgloss.NewStyle().
			Foreground(focusedColor).
			Bold(true)

	inputTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))
)

// Table and card content
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(redSuitColor).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	OwnSeatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	FoldedSeatStyle = lipgloss.NewStyle().
			Foreground(borderColor)

	ChipsStyle = lipgloss.NewStyle().
			Foreground(chipColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(redSuitColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(borderColor)
)

// pane returns the border style for a pane, highlighted when it has focus
func pane(focused bool) lipgloss.Style {
	if focused {
		return paneStyle.BorderForeground(focusedColor)
	}
	return paneStyle
}
