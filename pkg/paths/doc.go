// Package paths provides centralized path handling for deobf.
//
// It follows the XDG Base Directory specification for the locations deobf
// owns and derives every cache location from them:
//
//   - cache: downloaded configuration zips, pipeline step outputs
//   - config: the user settings file (deobf.toml)
//   - state: the log file
//   - data: the local maven-layout artifact repository
//
// # Environment Variables
//
//   - DEOBF_CACHE_DIR: Override XDG cache directory (default: $XDG_CACHE_HOME/deobf)
//   - DEOBF_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/deobf)
//   - DEOBF_STATE_DIR: Override XDG state directory (default: $XDG_STATE_HOME/deobf)
//   - DEOBF_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/deobf)
//
// A leading ~ in any override is expanded to the user's home directory.
package paths
