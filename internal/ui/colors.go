package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	accent   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	todo     lipgloss.Style
	box      lipgloss.Style
	sidebar  lipgloss.Style
}

type colors struct {
	title, text, ok, err, warn, help, accent, border string
}

var themes = map[Theme]colors{
	ThemeDark: {
		title: "#7D56F4", text: "#E5E7EB", ok: "#04B575", err: "#FF5F5F",
		warn: "#FFA500", help: "#626262", accent: "#60A5FA", border: "#3F3F46",
	},
	ThemeLight: {
		title: "#5A3FD6", text: "#111827", ok: "#0E8A52", err: "#C81E1E",
		warn: "#B45309", help: "#6B7280", accent: "#2563EB", border: "#D1D5DB",
	},
}

// NewPalette builds the stylesheet for t.
func NewPalette(t Theme) *Palette {
	c, ok := themes[t]
	if !ok {
		c = themes[ThemeDark]
	}
	return &Palette{
		title:    NewBold(c.title).MarginBottom(1),
		subtitle: NewEm(c.help),
		text:     NewStyle(c.text),
		ok:       NewBold(c.ok),
		err:      NewBold(c.err),
		warn:     NewStyle(c.warn),
		help:     NewEm(c.help),
		accent:   NewStyle(c.accent),
		selected: NewBold(c.accent),
		done:     NewStyle(c.ok),
		todo:     NewStyle(c.help),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.border)).
			Padding(0, 1),
		sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color(c.border)).
			PaddingRight(2).
			MarginRight(2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
