// Package termview draws rendered notes for a terminal.
package termview

import "github.com/charmbracelet/lipgloss"

// Theme holds the display parameters supplied by the theming layer. The
// view reads them but never interprets note content through them.
type Theme struct {
	Primary   lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor
	Math      lipgloss.TerminalColor
	Fallback  lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Border    lipgloss.Border
	UseBorder bool
}

// DefaultTheme adapts to light and dark terminals.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"},
		Accent:    lipgloss.AdaptiveColor{Light: "#047857", Dark: "#6EE7B7"},
		Math:      lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#C4B5FD"},
		Fallback:  lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Muted:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Border:    lipgloss.RoundedBorder(),
		UseBorder: true,
	}
}

// PlainTheme draws without colour or borders, for pipes and tests.
func PlainTheme() Theme {
	return Theme{
		Primary:  lipgloss.NoColor{},
		Accent:   lipgloss.NoColor{},
		Math:     lipgloss.NoColor{},
		Fallback: lipgloss.NoColor{},
		Muted:    lipgloss.NoColor{},
		Border:   lipgloss.HiddenBorder(),
	}
}

type styles struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	collapsed lipgloss.Style
	math      lipgloss.Style
	fallback  lipgloss.Style
	muted     lipgloss.Style
	bold      lipgloss.Style
	frame     lipgloss.Style
}

func (t Theme) styles(width int) styles {
	s := styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		collapsed: lipgloss.NewStyle().Foreground(t.Muted),
		math:      lipgloss.NewStyle().Foreground(t.Math),
		fallback:  lipgloss.NewStyle().Foreground(t.Fallback).Italic(true),
		muted:     lipgloss.NewStyle().Foreground(t.Muted),
		bold:      lipgloss.NewStyle().Bold(true),
		frame:     lipgloss.NewStyle(),
	}
	if t.UseBorder {
		s.frame = s.frame.
			Border(t.Border).
			BorderForeground(t.Primary).
			Padding(0, 1)
	}
	if width > 0 {
		s.frame = s.frame.Width(width)
	}
	return s
}
