package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	addTask       key.Binding
	taskInfo      key.Binding
	editTask      key.Binding
	deleteTask    key.Binding
	toggleDone    key.Binding
	addComment    key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	moveTaskUp    key.Binding
	moveTaskDown  key.Binding
	undo          key.Binding
	search        key.Binding
	labelFilter   key.Binding
	clearFilters  key.Binding
	cycleSort     key.Binding
	yankTask      key.Binding
	exportBoard   key.Binding
	toggleTheme   key.Binding
	addColumn     key.Binding
	renameColumn  key.Binding
	deleteColumn  key.Binding
	narrowColumn  key.Binding
	widenColumn   key.Binding
	columnLeft    key.Binding
	columnRight   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		toggleDone:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		addComment:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		moveTaskUp:    key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "move task up")),
		moveTaskDown:  key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "move task down")),
		undo:          key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "undo move")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		labelFilter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "label filter")),
		clearFilters:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filters")),
		cycleSort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		yankTask:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		exportBoard:   key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "export board")),
		toggleTheme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		addColumn:     key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "new column")),
		renameColumn:  key.NewBinding(key.WithKeys("R", "shift+r"), key.WithHelp("R", "rename column")),
		deleteColumn:  key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete column")),
		narrowColumn:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrow column")),
		widenColumn:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "widen column")),
		columnLeft:    key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "column to left")),
		columnRight:   key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "column to right")),
	}
}

// applyConfig overrides configurable bindings. Blank values keep the defaults.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.undo, cfg.Undo, "z", "undo move")
	configureBinding(&k.addTask, cfg.NewTask, "n", "new task")
	configureBinding(&k.search, cfg.Search, "/", "search")
	configureBinding(&k.toggleDone, cfg.ToggleDone, "x", "toggle done")
}

// parseBindingKeys converts one configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// configureBinding rewrites keys and help for one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.taskInfo, k.moveTaskLeft, k.moveTaskRight, k.undo, k.search, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.taskInfo, k.editTask, k.deleteTask, k.toggleDone, k.addComment, k.yankTask, k.undo},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.moveTaskLeft, k.moveTaskRight, k.moveTaskUp, k.moveTaskDown},
		{k.search, k.labelFilter, k.clearFilters, k.cycleSort, k.exportBoard, k.toggleTheme, k.reload, k.quit},
		{k.addColumn, k.renameColumn, k.deleteColumn, k.narrowColumn, k.widenColumn, k.columnLeft, k.columnRight, k.toggleHelp},
	}
}
