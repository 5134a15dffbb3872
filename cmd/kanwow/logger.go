package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/kanwow/internal/config"
)

// loggerOptions selects sinks for one invocation.
type loggerOptions struct {
	Prefix  string
	DevMode bool
	Logging config.LoggingConfig
	// LogDir is where the dev file lands when logging.dev_file.dir is blank, and what a
	// relative dir is resolved against.
	LogDir string
	Now    func() time.Time
}

// runtimeLogger writes runtime events to the console and, in dev mode, to a daily logfmt file.
// Loggers made with With share both sinks and the console mute switch.
type runtimeLogger struct {
	console *charmLog.Logger
	file    *charmLog.Logger
	muted   *atomic.Bool
	devFile *devFile
}

// devFile is the shared handle of the dev log file.
type devFile struct {
	path  string
	close func() error
}

func newSink(w io.Writer, level charmLog.Level, prefix string, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// newRuntimeLogger builds the console sink and, when enabled, opens the dev file.
func newRuntimeLogger(stderr io.Writer, opts loggerOptions) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(opts.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", opts.Logging.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &runtimeLogger{
		console: newSink(stderr, level, opts.Prefix, charmLog.TextFormatter),
		muted:   &atomic.Bool{},
	}
	if !opts.DevMode || !opts.Logging.DevFile.Enabled {
		return l, nil
	}

	path := dailyLogPath(opts.Logging.DevFile.Dir, opts.LogDir, opts.Prefix, opts.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	l.file = newSink(f, level, opts.Prefix, charmLog.LogfmtFormatter)
	l.devFile = &devFile{path: path, close: f.Close}
	return l, nil
}

// With returns a logger that adds keyvals to every event.
func (l *runtimeLogger) With(keyvals ...any) *runtimeLogger {
	if l == nil {
		return nil
	}
	child := *l
	child.console = l.console.With(keyvals...)
	if l.file != nil {
		child.file = l.file.With(keyvals...)
	}
	return &child
}

// Mute silences the console sink. The dev file keeps recording.
func (l *runtimeLogger) Mute(muted bool) {
	if l != nil {
		l.muted.Store(muted)
	}
}

// Muted reports whether the console sink is silenced.
func (l *runtimeLogger) Muted() bool {
	return l == nil || l.muted.Load()
}

// DevLogPath returns the open dev log file, or "".
func (l *runtimeLogger) DevLogPath() string {
	if l == nil || l.devFile == nil {
		return ""
	}
	return l.devFile.path
}

// Close closes the dev log file.
func (l *runtimeLogger) Close() error {
	if l == nil || l.devFile == nil {
		return nil
	}
	return l.devFile.close()
}

func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals []any) {
	if l == nil {
		return
	}
	if !l.muted.Load() {
		l.console.Log(level, msg, keyvals...)
	}
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg string, keyvals ...any)  { l.log(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any)  { l.log(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals) }

// dailyLogPath names the dev file <prefix>-YYYYMMDD.log. A blank dir uses logDir; a relative one
// is placed under logDir.
func dailyLogPath(dir, logDir, prefix string, day time.Time) string {
	dir = strings.TrimSpace(dir)
	switch {
	case dir == "":
		dir = logDir
	case !filepath.IsAbs(dir) && logDir != "":
		dir = filepath.Join(logDir, dir)
	}
	name := fmt.Sprintf("%s-%s.log", logFileStem(prefix), day.UTC().Format("20060102"))
	return filepath.Join(filepath.Clean(dir), name)
}

// logFileStem keeps letters, digits, dot, dash and underscore of prefix.
func logFileStem(prefix string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(prefix))
	stem = strings.Trim(stem, "-.")
	if stem == "" {
		return "kanwow"
	}
	return stem
}
