package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// UpsertTheme writes theme.name into the TOML file at path, keeping every other key.
func UpsertTheme(path, name string) error {
	palette, ok := ThemeByName(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	return upsertKey(path, "theme", "name", palette.Name)
}

// upsertKey sets section.key in the TOML file at path, creating the file when missing.
func upsertKey(path, section, key string, value any) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	doc := map[string]any{}
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	case len(content) > 0:
		if err := toml.Unmarshal(content, &doc); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	}
	table, _ := doc[section].(map[string]any)
	if table == nil {
		table = map[string]any{}
	}
	table[key] = value
	doc[section] = table

	encoded, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
