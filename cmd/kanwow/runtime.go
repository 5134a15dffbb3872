package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/evanschultz/kanwow/internal/adapters/broadcast/localbus"
	"github.com/evanschultz/kanwow/internal/adapters/broadcast/redisbus"
	"github.com/evanschultz/kanwow/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/config"
	"github.com/evanschultz/kanwow/internal/platform"
	"github.com/evanschultz/kanwow/internal/store"
	"github.com/evanschultz/kanwow/internal/tui"
	"github.com/google/uuid"
)

// memoryDBPath selects an in-memory database that is discarded on exit.
const memoryDBPath = ":memory:"

// boardRuntime owns the storage, sync and service handles of one process.
type boardRuntime struct {
	repo     *sqlite.Repository
	store    *store.Store
	svc      *app.Service
	closeBus func()
	logger   *runtimeLogger
	paths    platform.Paths
}

// openBoardRuntime opens sqlite, picks the sync transport and builds the service.
func openBoardRuntime(ctx context.Context, env *runtimeEnv) (*boardRuntime, error) {
	cfg := env.cfg
	logger := env.logger

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := openRepository(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	bus, closeBus, err := openBroadcaster(ctx, cfg.Sync, logger.With("component", "sync"))
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	st := store.New(repo, bus, store.Options{
		Key:          cfg.Storage.Key,
		Origin:       uuid.NewString(),
		DefaultBoard: app.DefaultBoard(columnTemplates(cfg.Board), cfg.Board.MinColumnWidth),
		Logger:       logger.With("component", "store"),
	})
	svc := app.NewService(st, uuid.NewString, time.Now, app.ServiceConfig{
		UndoDepth:          cfg.Undo.Depth,
		MinColumnWidth:     cfg.Board.MinColumnWidth,
		DefaultColumnWidth: cfg.Board.ColumnWidth,
		CommentAuthor:      cfg.Comments.Author,
	})
	logger.Debug("application service initialized", "undo_depth", cfg.Undo.Depth, "transport", cfg.Sync.Transport)
	return &boardRuntime{
		repo:     repo,
		store:    st,
		svc:      svc,
		closeBus: closeBus,
		logger:   logger,
		paths:    env.paths,
	}, nil
}

// openRepository opens the sqlite file at path, or a throwaway database for ":memory:".
func openRepository(path string) (*sqlite.Repository, error) {
	if path == memoryDBPath {
		return sqlite.OpenInMemory()
	}
	return sqlite.Open(path)
}

// openBroadcaster returns a nil Broadcaster for the "none" transport.
func openBroadcaster(ctx context.Context, cfg config.SyncConfig, logger *runtimeLogger) (store.Broadcaster, func(), error) {
	switch cfg.Transport {
	case config.SyncTransportLocal:
		hub := localbus.NewHub()
		logger.Info("board sync enabled", "transport", "local")
		return hub, hub.Close, nil
	case config.SyncTransportRedis:
		bus, err := redisbus.Dial(ctx, cfg.RedisAddr, cfg.Channel, logger)
		if err != nil {
			logger.Error("redis dial failed", "addr", cfg.RedisAddr, "err", err)
			return nil, nil, fmt.Errorf("connect redis sync: %w", err)
		}
		logger.Info("board sync enabled", "transport", "redis", "addr", cfg.RedisAddr, "channel", bus.Channel())
		return bus, func() {
			if err := bus.Close(); err != nil {
				logger.Warn("redis close failed", "err", err)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}

// Close stops sync and releases storage.
func (r *boardRuntime) Close() {
	r.svc.Close()
	r.store.Close()
	if r.closeBus != nil {
		r.closeBus()
	}
	if err := r.repo.Close(); err != nil {
		r.logger.Warn("sqlite close failed", "err", err)
	}
}

func columnTemplates(cfg config.BoardConfig) []app.ColumnTemplate {
	out := make([]app.ColumnTemplate, 0, len(cfg.Columns))
	for _, col := range cfg.Columns {
		width := col.Width
		if width == 0 {
			width = cfg.ColumnWidth
		}
		out = append(out, app.ColumnTemplate{ID: col.ID, Title: col.Title, Icon: col.Icon, Width: width})
	}
	return out
}

// runExport writes the board document to outPath, stdout for "-", or a dated file in the
// export directory when outPath is empty.
func runExport(_ context.Context, rt *boardRuntime, outPath string, stdout io.Writer, now time.Time) error {
	data, err := rt.svc.Export()
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if outPath == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write board to stdout: %w", err)
		}
		return nil
	}
	path, err := writeExportFile(rt.paths, outPath, data, now)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, path)
	return nil
}

// writeExportFile writes data to path, defaulting to kanban-YYYY-MM-DD.json in the export dir.
func writeExportFile(paths platform.Paths, path string, data []byte, now time.Time) (string, error) {
	if path == "" {
		path = paths.ExportPath(store.ExportFileName(now))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// logLastSaved reports when the stored board was last written.
func logLastSaved(ctx context.Context, rt *boardRuntime) {
	at, ok, err := rt.repo.UpdatedAt(ctx, rt.store.Key())
	switch {
	case err != nil:
		rt.logger.Warn("board timestamp read failed", "err", err)
	case ok:
		rt.logger.Debug("stored board found", "key", rt.store.Key(), "updated_at", at.Format(time.RFC3339))
	default:
		rt.logger.Debug("no stored board, using default columns", "key", rt.store.Key())
	}
}

// runReset deletes the stored board so the next start uses the default columns.
func runReset(ctx context.Context, rt *boardRuntime, stdout io.Writer) error {
	if err := rt.repo.Delete(ctx, rt.store.Key()); err != nil {
		return fmt.Errorf("delete stored board: %w", err)
	}
	rt.logger.Info("stored board deleted", "key", rt.store.Key())
	_, _ = fmt.Fprintln(stdout, "board reset to default columns")
	return nil
}

// runImport replaces the board with the document at inPath.
func runImport(ctx context.Context, rt *boardRuntime, inPath string) error {
	if inPath == "" {
		return errors.New("--in is required")
	}
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	b, err := rt.svc.Import(ctx, content)
	if err != nil {
		return err
	}
	rt.logger.Info("board imported", "columns", len(b.Columns), "tasks", len(b.Tasks))
	return nil
}

// newBoardModel maps config into TUI options.
func newBoardModel(svc *app.Service, env *runtimeEnv) tui.Model {
	cfg := env.cfg
	logger := env.logger.With("component", "tui")
	palettes := config.Themes()
	themes := make([]tui.Theme, 0, len(palettes))
	for _, p := range palettes {
		if !p.Valid() {
			logger.Warn("skipping theme with invalid colors", "theme", p.Name)
			continue
		}
		themes = append(themes, toTUITheme(p))
	}
	current, _ := config.ThemeByName(cfg.Theme.Name)

	return tui.NewModel(
		svc,
		tui.WithThemes(themes, func(name string) error {
			logger.Info("theme update requested", "theme", name, "config_path", env.configPath)
			if err := config.UpsertTheme(env.configPath, name); err != nil {
				logger.Error("theme update failed", "theme", name, "err", err)
				return fmt.Errorf("persist theme: %w", err)
			}
			return nil
		}),
		tui.WithTheme(toTUITheme(current)),
		tui.WithKeyConfig(tui.KeyConfig{
			Undo:       cfg.Keys.Undo,
			NewTask:    cfg.Keys.NewTask,
			Search:     cfg.Keys.Search,
			ToggleDone: cfg.Keys.ToggleDone,
		}),
		tui.WithFeatures(tui.FeatureConfig{
			Icons:           cfg.Features.Icons,
			MarkdownPreview: cfg.Features.MarkdownPreview,
		}),
		tui.WithAnimation(tui.AnimationConfig{
			Enabled:  cfg.Animation.Enabled,
			Duration: time.Duration(cfg.Animation.DurationMS) * time.Millisecond,
			FPS:      cfg.Animation.FPS,
		}),
		tui.WithMinColumnWidth(cfg.Board.MinColumnWidth),
		tui.WithExport(func(data []byte, now time.Time) (string, error) {
			path, err := writeExportFile(env.paths, "", data, now)
			if err != nil {
				logger.Error("board export failed", "err", err)
				return "", err
			}
			logger.Info("board exported", "path", path)
			return path, nil
		}),
		tui.WithClipboard(clipboard.WriteAll),
	)
}

func toTUITheme(p config.Palette) tui.Theme {
	return tui.Theme{
		Name:    p.Name,
		Accent:  p.Accent,
		Text:    p.Text,
		Muted:   p.Muted,
		Border:  p.Border,
		Card:    p.Card,
		Overdue: p.Overdue,
		Done:    p.Done,
		Label:   p.Label,
	}
}
