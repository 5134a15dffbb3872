package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/kanwow.db")
	if cfg.Database.Path != "/tmp/kanwow.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Storage.Key != "kanban-wow.v1" || cfg.Sync.Channel != "kanban-wow-sync" {
		t.Fatalf("unexpected storage/sync defaults %#v %#v", cfg.Storage, cfg.Sync)
	}
	if cfg.Sync.Transport != SyncTransportNone {
		t.Fatalf("unexpected transport %q", cfg.Sync.Transport)
	}
	if len(cfg.Board.Columns) != 3 || cfg.Board.Columns[0].Title != "Backlog" || cfg.Board.Columns[2].Width != 280 {
		t.Fatalf("unexpected default columns %#v", cfg.Board.Columns)
	}
	if cfg.Board.MinColumnWidth != 200 || cfg.Undo.Depth != 1 {
		t.Fatalf("unexpected board/undo defaults %#v %#v", cfg.Board, cfg.Undo)
	}
	if !cfg.Animation.Enabled || cfg.Animation.DurationMS != 260 {
		t.Fatalf("unexpected animation defaults %#v", cfg.Animation)
	}
	if cfg.Keys.Undo != "z" {
		t.Fatalf("unexpected undo key %q", cfg.Keys.Undo)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/kanwow.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/kanwow.db"

[sync]
transport = "redis"
redis_addr = "10.0.0.5:6379"

[[board.columns]]
id = "todo"
title = "To Do"
width = 320

[[board.columns]]
id = "done"
title = "Done"

[undo]
depth = 5

[features]
icons = false

[theme]
name = "light"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/kanwow.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Sync.Transport != SyncTransportRedis || cfg.Sync.RedisAddr != "10.0.0.5:6379" {
		t.Fatalf("unexpected sync config %#v", cfg.Sync)
	}
	if len(cfg.Board.Columns) != 2 || cfg.Board.Columns[0].ID != "todo" || cfg.Board.Columns[0].Width != 320 {
		t.Fatalf("unexpected columns %#v", cfg.Board.Columns)
	}
	if cfg.Undo.Depth != 5 {
		t.Fatalf("unexpected undo depth %d", cfg.Undo.Depth)
	}
	if cfg.Features.Icons {
		t.Fatal("expected icons disabled from config override")
	}
	if !cfg.Features.MarkdownPreview {
		t.Fatal("expected untouched feature to keep its default")
	}
	if cfg.Theme.Name != "light" {
		t.Fatalf("unexpected theme %q", cfg.Theme.Name)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"transport":     "[sync]\ntransport = \"carrier-pigeon\"\n",
		"undo depth":    "[undo]\ndepth = 0\n",
		"theme":         "[theme]\nname = \"neon\"\n",
		"duplicate col": "[[board.columns]]\nid = \"a\"\ntitle = \"A\"\n[[board.columns]]\nid = \"a\"\ntitle = \"B\"\n",
		"min width":     "[board]\nmin_column_width = 0\n",
		"log level":     "[logging]\nlevel = \"loud\"\n",
		"empty key":     "[keys]\nundo = \"\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := Load(path, Default("/tmp/default.db")); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestThemes(t *testing.T) {
	for _, p := range Themes() {
		if !p.Valid() {
			t.Fatalf("theme %q has invalid colors", p.Name)
		}
	}
	if _, ok := ThemeByName(" DARK "); !ok {
		t.Fatal("expected case-insensitive theme lookup")
	}
}

func TestUpsertThemeKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := UpsertTheme(path, "light"); err != nil {
		t.Fatalf("UpsertTheme() on missing file error = %v", err)
	}
	if err := os.WriteFile(path, []byte("[undo]\ndepth = 3\n\n[theme]\nname = \"light\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := UpsertTheme(path, "Dark"); err != nil {
		t.Fatalf("UpsertTheme() error = %v", err)
	}
	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.Name != "dark" || cfg.Undo.Depth != 3 {
		t.Fatalf("unexpected config after upsert %#v %#v", cfg.Theme, cfg.Undo)
	}
	if err := UpsertTheme(path, "neon"); err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Fatalf("expected unknown theme error, got %v", err)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
