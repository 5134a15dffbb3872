package config

import (
	"slices"
	"strings"
)

// Palette is a named set of hex colors the board renders with.
type Palette struct {
	Name    string
	Accent  string
	Text    string
	Muted   string
	Border  string
	Card    string
	Overdue string
	Done    string
	Label   string
}

var builtinThemes = []Palette{
	{
		Name:    "dark",
		Accent:  "#7C9CFF",
		Text:    "#E6E8EE",
		Muted:   "#8A90A2",
		Border:  "#3B4154",
		Card:    "#1E2230",
		Overdue: "#FF6B6B",
		Done:    "#5FD38D",
		Label:   "#F2C14E",
	},
	{
		Name:    "light",
		Accent:  "#3A5BD9",
		Text:    "#1F2330",
		Muted:   "#6B7185",
		Border:  "#C9CEDB",
		Card:    "#F4F6FB",
		Overdue: "#D64545",
		Done:    "#2E9E5B",
		Label:   "#B7791F",
	},
}

// Themes returns the built-in palettes in toggle order.
func Themes() []Palette {
	return slices.Clone(builtinThemes)
}

// ThemeByName resolves a built-in palette, case-insensitively.
func ThemeByName(name string) (Palette, bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, p := range builtinThemes {
		if p.Name == name {
			return p, true
		}
	}
	return Palette{}, false
}

// Valid reports whether every color is a #RRGGBB hex string.
func (p Palette) Valid() bool {
	for _, c := range []string{p.Accent, p.Text, p.Muted, p.Border, p.Card, p.Overdue, p.Done, p.Label} {
		if !hexColorPattern.MatchString(c) {
			return false
		}
	}
	return true
}
