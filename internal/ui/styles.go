package ui

import "github.com/charmbracelet/lipgloss"

var styles = newPalette("#1DB954", "#FFFFFF", "#B3B3B3", "#FFA500", "#626262")

type palette struct {
	brand    lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	warn     lipgloss.Style
	dim      lipgloss.Style
	frame    lipgloss.Style
}

func newPalette(brand, title, subtitle, warn, dim string) palette {
	return palette{
		brand:    newBold(brand),
		title:    newBold(title),
		subtitle: newStyle(subtitle),
		warn:     newStyle(warn).Italic(true),
		dim:      newStyle(dim).Italic(true),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(brand)).
			Padding(1, 2),
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}
