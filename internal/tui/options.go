package tui

import (
	"image/color"
	"time"

	"charm.land/lipgloss/v2"
)

type Option func(*Model)

// Theme holds the board colors. Values are hex strings.
type Theme struct {
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

// KeyConfig holds user-configurable key overrides.
type KeyConfig struct {
	Undo       string
	NewTask    string
	Search     string
	ToggleDone string
}

// FeatureConfig toggles optional board features.
type FeatureConfig struct {
	Icons           bool
	MarkdownPreview bool
}

// AnimationConfig controls FLIP playback.
type AnimationConfig struct {
	Enabled  bool
	Duration time.Duration
	FPS      int
}

// SaveThemeFunc persists the chosen theme name.
type SaveThemeFunc func(name string) error

// ExportFunc writes an exported board document and returns where it went.
type ExportFunc func(data []byte, now time.Time) (string, error)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(text string) error

func DefaultTheme() Theme {
	return Theme{
		Name:    "dark",
		Accent:  "#7D56F4",
		Text:    "#E4E4E7",
		Muted:   "#8A8A93",
		Border:  "#3F3F46",
		Card:    "#27272A",
		Overdue: "#F87171",
		Done:    "#4ADE80",
		Label:   "#60A5FA",
	}
}

func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{Icons: true, MarkdownPreview: true}
}

func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{Enabled: true, Duration: 260 * time.Millisecond, FPS: 60}
}

func WithTheme(theme Theme) Option {
	return func(m *Model) {
		if theme.Name == "" {
			return
		}
		m.theme = theme
	}
}

// WithThemes sets the cycle used by the theme toggle.
func WithThemes(themes []Theme, save SaveThemeFunc) Option {
	return func(m *Model) {
		if len(themes) > 0 {
			m.themes = append([]Theme(nil), themes...)
		}
		m.saveTheme = save
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithFeatures(cfg FeatureConfig) Option {
	return func(m *Model) {
		m.features = cfg
	}
}

func WithAnimation(cfg AnimationConfig) Option {
	return func(m *Model) {
		if cfg.FPS <= 0 {
			cfg.FPS = DefaultAnimationConfig().FPS
		}
		m.animation = cfg
	}
}

func WithMinColumnWidth(px int) Option {
	return func(m *Model) {
		if px > 0 {
			m.minColumnWidth = px
		}
	}
}

func WithExport(fn ExportFunc) Option {
	return func(m *Model) {
		m.export = fn
	}
}

func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		m.clipboard = fn
	}
}

// WithClock overrides the time source used for due dates and the snackbar.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// themeColor returns the lipgloss color for a theme hex value, falling back when blank.
func themeColor(hex, fallback string) color.Color {
	if hex == "" {
		hex = fallback
	}
	return lipgloss.Color(hex)
}
