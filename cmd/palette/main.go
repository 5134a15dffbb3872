// Package main prints the built-in board themes as swatch tables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/kanwow/internal/config"
)

func main() {
	palettes := config.Themes()
	if len(os.Args) > 1 {
		p, ok := config.ThemeByName(os.Args[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown theme %q\n", os.Args[1])
			os.Exit(1)
		}
		palettes = []config.Palette{p}
	}
	renderPalettes(os.Stdout, palettes)
}

// swatch is one named role of a palette.
type swatch struct {
	role string
	hex  string
}

func swatches(p config.Palette) []swatch {
	return []swatch{
		{"Accent", p.Accent},
		{"Text", p.Text},
		{"Muted", p.Muted},
		{"Border", p.Border},
		{"Card", p.Card},
		{"Overdue", p.Overdue},
		{"Done", p.Done},
		{"Label", p.Label},
	}
}

func renderPalettes(w io.Writer, palettes []config.Palette) {
	for i, p := range palettes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s ===\n", p.Name)
		fmt.Fprintln(w, paletteTable(p).Render())
		fmt.Fprintln(w, cardPreview(p))
	}
}

func paletteTable(p config.Palette) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border))).
		Headers("Role", "Hex", "Sample").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent))
			}
			return lipgloss.NewStyle()
		})

	for _, s := range swatches(p) {
		sample := lipgloss.NewStyle().
			Background(lipgloss.Color(s.hex)).
			Foreground(lipgloss.Color(p.Text)).
			Width(12).
			Align(lipgloss.Center).
			Render(s.hex)
		t.Row(s.role, s.hex, sample)
	}
	return t
}

// cardPreview renders a sample card the way the board draws one.
func cardPreview(p config.Palette) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)).Render("Write release notes")
	due := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Overdue)).Render("due 2026-03-01")
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Label)).Render("#docs")
	done := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Done)).Render("✓ done")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Accent)).
		Background(lipgloss.Color(p.Card)).
		Padding(0, 1).
		Width(28).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, due+" "+label, done))
}
