package report

import "github.com/charmbracelet/lipgloss"

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("34")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
)

// Symbols for visual feedback.
const (
	SymbolCheck  = "✓"
	SymbolCross  = "✗"
	SymbolBullet = "•"
)

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{
			title:   lipgloss.NewStyle(),
			muted:   lipgloss.NewStyle(),
			success: lipgloss.NewStyle(),
			warning: lipgloss.NewStyle(),
			failure: lipgloss.NewStyle(),
		}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		muted:   lipgloss.NewStyle().Foreground(ColorSecondary),
		success: lipgloss.NewStyle().Foreground(ColorSuccess),
		warning: lipgloss.NewStyle().Foreground(ColorWarning),
		failure: lipgloss.NewStyle().Foreground(ColorError),
	}
}
