package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kontali/konsole/internal/status"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	orangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func lightStyle(l status.Light) lipgloss.Style {
	switch l {
	case status.Green:
		return greenStyle
	case status.Yellow:
		return yellowStyle
	case status.Orange:
		return orangeStyle
	default:
		return redStyle
	}
}

// lightDot renders the traffic-light dot for a classification.
func lightDot(l status.Light) string {
	return lightStyle(l).Render("●")
}

// confidenceBadge renders a percent with the compact badge thresholds.
func confidenceBadge(c float64) string {
	return lightStyle(status.ConfidenceBadge(c)).Render(fmt.Sprintf("%3.0f%%", c))
}

// breakdownBadge renders a percent with the breakdown thresholds.
func breakdownBadge(c float64) string {
	return lightStyle(status.BreakdownBadge(c)).Render(fmt.Sprintf("%3.0f%%", c))
}

// progressBar renders a fixed-width bar for 0-100 values.
func progressBar(c float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(c / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return lightStyle(status.ConfidenceBadge(c)).Render(bar)
}
