package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvCacheDir overrides the XDG cache directory for deobf
	EnvCacheDir = "DEOBF_CACHE_DIR"

	// EnvConfigDir overrides the XDG config directory for deobf
	EnvConfigDir = "DEOBF_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for deobf
	EnvStateDir = "DEOBF_STATE_DIR"

	// EnvDataDir overrides the XDG data directory for deobf
	EnvDataDir = "DEOBF_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed layout below the XDG directories. These are not user-configurable;
// user-facing settings live in pkg/config.
const (
	// AppDirName is the directory name for deobf-specific files
	AppDirName = "deobf"

	// SettingsFile is the name of the user settings file
	SettingsFile = "deobf.toml"

	// LogFileName is the name of the log file
	LogFileName = "deobf.log"

	// RepositoryDir is the data subdirectory holding installed artifacts
	RepositoryDir = "repository"

	// EnvironmentsDir is the cache subdirectory holding per-environment work trees
	EnvironmentsDir = "environments"
)

// Paths provides centralized path management for deobf
type Paths interface {
	CacheDir() string
	ConfigDir() string
	StateDir() string
	DataDir() string
	SettingsPath() string
	LogFilePath() string
	RepositoryDir() string
}

type paths struct {
	cache  string
	config string
	state  string
	data   string
}

// New creates a Paths instance, respecting DEOBF_* overrides before XDG defaults.
func New() Paths {
	return &paths{
		cache:  resolveDir(EnvCacheDir, xdg.CacheHome),
		config: resolveDir(EnvConfigDir, xdg.ConfigHome),
		state:  resolveDir(EnvStateDir, xdg.StateHome),
		data:   resolveDir(EnvDataDir, xdg.DataHome),
	}
}

// NewWithRoot places every directory below root.
func NewWithRoot(root string) Paths {
	root = expandHome(root)
	return &paths{
		cache:  filepath.Join(root, "cache"),
		config: filepath.Join(root, "config"),
		state:  filepath.Join(root, "state"),
		data:   filepath.Join(root, "data"),
	}
}

func resolveDir(envVar, xdgBase string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdgBase, AppDirName)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

func (p *paths) CacheDir() string  { return p.cache }
func (p *paths) ConfigDir() string { return p.config }
func (p *paths) StateDir() string  { return p.state }
func (p *paths) DataDir() string   { return p.data }

// SettingsPath returns the location of the user settings file
func (p *paths) SettingsPath() string {
	return filepath.Join(p.config, SettingsFile)
}

// LogFilePath returns the location of the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.state, LogFileName)
}

// RepositoryDir returns the root of the local artifact repository
func (p *paths) RepositoryDir() string {
	return filepath.Join(p.data, RepositoryDir)
}
