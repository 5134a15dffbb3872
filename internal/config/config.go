package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type SyncTransport string

const (
	SyncTransportNone  SyncTransport = "none"
	SyncTransportLocal SyncTransport = "local"
	SyncTransportRedis SyncTransport = "redis"
)

const (
	DefaultStorageKey     = "kanban-wow.v1"
	DefaultSyncChannel    = "kanban-wow-sync"
	DefaultMinColumnWidth = 200
	DefaultColumnWidth    = 280
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Sync      SyncConfig      `toml:"sync"`
	Board     BoardConfig     `toml:"board"`
	Undo      UndoConfig      `toml:"undo"`
	Animation AnimationConfig `toml:"animation"`
	Autosave  AutosaveConfig  `toml:"autosave"`
	Features  FeaturesConfig  `toml:"features"`
	Theme     ThemeConfig     `toml:"theme"`
	Comments  CommentsConfig  `toml:"comments"`
	Logging   LoggingConfig   `toml:"logging"`
	Keys      KeyConfig       `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Key string `toml:"key"`
}

type SyncConfig struct {
	Transport SyncTransport `toml:"transport"`
	RedisAddr string        `toml:"redis_addr"`
	Channel   string        `toml:"channel"`
}

type BoardConfig struct {
	Columns        []ColumnConfig `toml:"columns"`
	MinColumnWidth int            `toml:"min_column_width"`
	ColumnWidth    int            `toml:"column_width"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
	Icon  string `toml:"icon"`
	Width int    `toml:"width"`
}

type UndoConfig struct {
	Depth int `toml:"depth"`
}

type AnimationConfig struct {
	Enabled    bool `toml:"enabled"`
	DurationMS int  `toml:"duration_ms"`
	FPS        int  `toml:"fps"`
}

type AutosaveConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type FeaturesConfig struct {
	Icons           bool `toml:"icons"`
	MarkdownPreview bool `toml:"markdown_preview"`
}

type ThemeConfig struct {
	Name string `toml:"name"`
}

type CommentsConfig struct {
	Author string `toml:"author"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type KeyConfig struct {
	Undo       string `toml:"undo"`
	NewTask    string `toml:"new_task"`
	Search     string `toml:"search"`
	ToggleDone string `toml:"toggle_done"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "col-1", Title: "Backlog", Icon: "📋", Width: DefaultColumnWidth},
		{ID: "col-2", Title: "In Progress", Icon: "🚧", Width: DefaultColumnWidth},
		{ID: "col-3", Title: "Done", Icon: "✅", Width: DefaultColumnWidth},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Key: DefaultStorageKey,
		},
		Sync: SyncConfig{
			Transport: SyncTransportNone,
			RedisAddr: "127.0.0.1:6379",
			Channel:   DefaultSyncChannel,
		},
		Board: BoardConfig{
			Columns:        defaultColumns(),
			MinColumnWidth: DefaultMinColumnWidth,
			ColumnWidth:    DefaultColumnWidth,
		},
		Undo: UndoConfig{
			Depth: 1,
		},
		Animation: AnimationConfig{
			Enabled:    true,
			DurationMS: 260,
			FPS:        60,
		},
		Autosave: AutosaveConfig{
			IntervalSeconds: 5,
		},
		Features: FeaturesConfig{
			Icons:           true,
			MarkdownPreview: true,
		},
		Theme: ThemeConfig{
			Name: "dark",
		},
		Comments: CommentsConfig{
			Author: "me",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Keys: KeyConfig{
			Undo:       "z",
			NewTask:    "n",
			Search:     "/",
			ToggleDone: "x",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	// A [[board.columns]] list in the file replaces the default columns rather than extending them.
	var explicit struct {
		Board struct {
			Columns []ColumnConfig `toml:"columns"`
		} `toml:"board"`
	}
	if err := toml.Unmarshal(content, &explicit); err == nil && explicit.Board.Columns != nil {
		cfg.Board.Columns = explicit.Board.Columns
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}

	switch c.Sync.Transport {
	case SyncTransportNone, SyncTransportLocal:
	case SyncTransportRedis:
		if strings.TrimSpace(c.Sync.RedisAddr) == "" {
			return errors.New("sync.redis_addr is required for the redis transport")
		}
	default:
		return fmt.Errorf("invalid sync.transport: %q", c.Sync.Transport)
	}
	if strings.TrimSpace(c.Sync.Channel) == "" {
		return errors.New("sync.channel is required")
	}

	if c.Board.MinColumnWidth <= 0 {
		return fmt.Errorf("board.min_column_width must be > 0")
	}
	if c.Board.ColumnWidth < 0 {
		return fmt.Errorf("board.column_width must be >= 0")
	}
	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenColumnID := map[string]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if strings.TrimSpace(column.Title) == "" {
			return fmt.Errorf("board.columns[%d].title is required", idx)
		}
		if column.Width < 0 {
			return fmt.Errorf("board.columns[%d].width must be >= 0", idx)
		}
		if _, ok := seenColumnID[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seenColumnID[id] = struct{}{}
	}

	if c.Undo.Depth < 1 {
		return fmt.Errorf("undo.depth must be >= 1")
	}
	if c.Animation.DurationMS < 0 {
		return fmt.Errorf("animation.duration_ms must be >= 0")
	}
	if c.Animation.FPS <= 0 || c.Animation.FPS > 240 {
		return fmt.Errorf("animation.fps must be between 1 and 240")
	}
	if c.Autosave.IntervalSeconds < 0 {
		return fmt.Errorf("autosave.interval_seconds must be >= 0")
	}
	if _, ok := ThemeByName(c.Theme.Name); !ok {
		return fmt.Errorf("unknown theme.name: %q", c.Theme.Name)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	keys := map[string]string{
		"keys.undo":        c.Keys.Undo,
		"keys.new_task":    c.Keys.NewTask,
		"keys.search":      c.Keys.Search,
		"keys.toggle_done": c.Keys.ToggleDone,
	}
	for name, value := range keys {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
