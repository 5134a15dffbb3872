package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/kanwow/internal/config"
	"github.com/evanschultz/kanwow/internal/platform"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program run() depends on.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program. Tests swap it for a fake.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx := context.Background()
	root := newRootCommand(ctx, os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree with plain cobra so tests see unstyled output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(ctx, stdout, stderr)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the kanwow command tree.
func newRootCommand(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("KANWOW_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANWOW_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:     "kanwow",
		Short:   "A kanban board for the terminal with drag and drop, undo and live sync",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmdContext(cmd, ctx), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newExportCommand(ctx, opts, stdout, stderr),
		newImportCommand(ctx, opts, stderr),
		newResetCommand(ctx, opts, stdout, stderr),
	)
	return root
}

func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			_, _ = fmt.Fprintf(stdout, "export_dir: %s\n", paths.ExportDir)
			return nil
		},
	}
}

func newExportCommand(ctx context.Context, opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBoard(cmdContext(cmd, ctx), opts, stderr, "export", func(ctx context.Context, rt *boardRuntime) error {
				return runExport(ctx, rt, outPath, stdout, time.Now())
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file path ('-' for stdout, default kanban-YYYY-MM-DD.json)")
	return cmd
}

func newImportCommand(ctx context.Context, opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBoard(cmdContext(cmd, ctx), opts, stderr, "import", func(ctx context.Context, rt *boardRuntime) error {
				return runImport(ctx, rt, inPath)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input board JSON file")
	return cmd
}

func newResetCommand(ctx context.Context, opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored board and start over with the default columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBoard(cmdContext(cmd, ctx), opts, stderr, "reset", func(ctx context.Context, rt *boardRuntime) error {
				return runReset(ctx, rt, stdout)
			})
		},
	}
}

// cmdContext prefers the context cobra carries.
func cmdContext(cmd *cobra.Command, fallback context.Context) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return fallback
}

func (o *rootOptions) paths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// runtimeEnv is the resolved configuration of one command invocation.
type runtimeEnv struct {
	opts       *rootOptions
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

// resolve loads paths, config and the runtime logger. muteConsole keeps every runtime log in
// the dev-file sink.
func (o *rootOptions) resolve(stderr io.Writer, command string, muteConsole bool) (*runtimeEnv, error) {
	paths, err := o.paths()
	if err != nil {
		return nil, err
	}

	configPath := o.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KANWOW_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KANWOW_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, loggerOptions{
		Prefix:  o.appName,
		DevMode: o.devMode,
		Logging: cfg.Logging,
		LogDir:  paths.LogDir,
	})
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Mute(muteConsole)
	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path, "export_dir", paths.ExportDir)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		opts:       o,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// close releases the logger sinks.
func (e *runtimeEnv) close(stderr io.Writer) {
	if err := e.logger.Close(); err != nil && !e.logger.Muted() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// withBoard runs fn against a loaded board runtime and logs the command flow.
func withBoard(ctx context.Context, opts *rootOptions, stderr io.Writer, command string, fn func(context.Context, *boardRuntime) error) error {
	env, err := opts.resolve(stderr, command, false)
	if err != nil {
		return err
	}
	defer env.close(stderr)

	rt, err := openBoardRuntime(ctx, env)
	if err != nil {
		return err
	}
	defer rt.Close()
	logLastSaved(ctx, rt)
	rt.svc.Load(ctx)

	env.logger.Info("command flow start", "command", command)
	if err := fn(ctx, rt); err != nil {
		env.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	env.logger.Info("command flow complete", "command", command)
	return nil
}

// runBoard starts sync, autosave and the TUI program loop.
func runBoard(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	// Runtime logs stay in the dev-file sink while the board owns the terminal.
	env, err := opts.resolve(stderr, "tui", true)
	if err != nil {
		return err
	}
	defer env.close(stderr)

	rt, err := openBoardRuntime(ctx, env)
	if err != nil {
		return err
	}
	defer rt.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	startBackground(runCtx, rt, env)

	m := newBoardModel(rt.svc, env)
	env.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.svc.Persist(ctx)
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

// startBackground loads the board, then starts sync and autosave.
func startBackground(ctx context.Context, rt *boardRuntime, env *runtimeEnv) {
	logLastSaved(ctx, rt)
	rt.svc.Load(ctx)
	if err := rt.store.Start(ctx); err != nil {
		env.logger.Warn("board sync subscribe failed", "transport", env.cfg.Sync.Transport, "err", err)
	}
	if interval := env.cfg.Autosave.IntervalSeconds; interval > 0 {
		go rt.store.RunAutosave(ctx, time.Duration(interval)*time.Second, rt.svc.Board)
	}
}

// parseBoolEnv parses a boolean environment variable. ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
