package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorGreen  = "#388E3C"
	colorYellow = "#FBC02D"
	colorRed    = "#D32F2F"
	colorBlue   = "#1976D2"
)

var (
	// Card frame
	CardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	BulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	ScrollHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)
)

// scoreStyle colors the health score the way the bars are colored.
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return ValueStyle.Foreground(lipgloss.Color(colorGreen))
	case score >= 50:
		return ValueStyle.Foreground(lipgloss.Color(colorYellow))
	default:
		return ValueStyle.Foreground(lipgloss.Color(colorRed))
	}
}

func batteryColor(pct float64) string {
	switch {
	case pct > 60:
		return colorGreen
	case pct > 20:
		return colorYellow
	default:
		return colorRed
	}
}

func temperatureColor(celsius float64) string {
	switch {
	case celsius > 45:
		return colorRed
	case celsius > 35:
		return colorYellow
	default:
		return colorBlue
	}
}

// usageColor is red above crit, yellow above warn and green otherwise.
func usageColor(ratio, warn, crit float64) string {
	switch {
	case ratio > crit:
		return colorRed
	case ratio > warn:
		return colorYellow
	default:
		return colorGreen
	}
}
