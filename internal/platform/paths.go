// Package platform resolves where kanwow keeps its config, board database, logs and exports.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the per-user directories.
const DefaultAppName = "kanwow"

// ExportDirEnv overrides the directory `export` and the board's export key write to.
const ExportDirEnv = "KANWOW_EXPORT_DIR"

// boardDBName is the sqlite file holding the board key-value table.
const boardDBName = "board.db"

// Paths locates every file kanwow reads or writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
	ExportDir  string
}

// ExportPath places name in the export directory. Absolute names are returned unchanged.
func (p Paths) ExportPath(name string) string {
	if filepath.IsAbs(name) || p.ExportDir == "" {
		return name
	}
	return filepath.Join(p.ExportDir, name)
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// dirName is the directory name under each base, "<app>-dev" in dev mode.
func (o Options) dirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// Env is the process state path resolution reads.
type Env struct {
	GOOS      string
	Home      string
	ConfigDir string
	WorkDir   string
	Getenv    func(string) string
}

func (e Env) lookup(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(e.Getenv(key))
}

// ProcessEnv captures the current process environment. Missing home or config dirs are left
// blank for Resolve to report.
func ProcessEnv() Env {
	home, _ := os.UserHomeDir()
	configDir, _ := os.UserConfigDir()
	workDir, _ := os.Getwd()
	return Env{
		GOOS:      runtime.GOOS,
		Home:      home,
		ConfigDir: configDir,
		WorkDir:   workDir,
		Getenv:    os.Getenv,
	}
}

// DefaultPathsWithOptions resolves paths for the running process.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	return Resolve(ProcessEnv(), opts)
}

// bases holds the per-OS parent directories before the app name is appended.
type bases struct {
	config string
	data   string
	logs   string
}

// Resolve computes the paths for env. Linux follows the XDG base directories, including
// XDG_STATE_HOME for logs; macOS keeps logs under ~/Library/Logs; Windows uses APPDATA for config
// and LOCALAPPDATA for data and logs.
func Resolve(env Env, opts Options) (Paths, error) {
	b, err := resolveBases(env)
	if err != nil {
		return Paths{}, err
	}
	name := opts.dirName()
	dataDir := filepath.Join(b.data, name)
	logDir := filepath.Join(b.logs, name)
	if b.logs == b.data {
		logDir = filepath.Join(dataDir, "log")
	}

	exportDir := env.lookup(ExportDirEnv)
	if exportDir == "" {
		exportDir = env.WorkDir
	}
	return Paths{
		ConfigPath: filepath.Join(b.config, name, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, boardDBName),
		LogDir:     logDir,
		ExportDir:  exportDir,
	}, nil
}

func resolveBases(env Env) (bases, error) {
	var b bases
	switch env.GOOS {
	case "windows":
		b.config = firstNonEmpty(env.lookup("APPDATA"), env.ConfigDir)
		b.data = firstNonEmpty(env.lookup("LOCALAPPDATA"), env.ConfigDir)
		b.logs = b.data
	case "darwin":
		b.config = env.ConfigDir
		b.data = env.ConfigDir
		b.logs = b.data
		if env.Home != "" {
			b.logs = filepath.Join(env.Home, "Library", "Logs")
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		b.config = firstNonEmpty(env.lookup("XDG_CONFIG_HOME"), env.ConfigDir, homeJoin(env.Home, ".config"))
		b.data = firstNonEmpty(env.lookup("XDG_DATA_HOME"), homeJoin(env.Home, ".local", "share"))
		b.logs = firstNonEmpty(env.lookup("XDG_STATE_HOME"), homeJoin(env.Home, ".local", "state"), b.data)
	default:
		b.config = env.ConfigDir
		b.data = env.ConfigDir
		b.logs = b.data
	}
	if b.config == "" || b.data == "" {
		return bases{}, fmt.Errorf("resolve %s dirs: %w", env.GOOS, errNoBaseDir)
	}
	return b, nil
}

var errNoBaseDir = errors.New("no config or home directory available")

func homeJoin(home string, elems ...string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(append([]string{home}, elems...)...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
