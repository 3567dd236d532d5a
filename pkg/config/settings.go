package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/paths"
)

// EnvPrefix prefixes every environment variable read into Settings
const EnvPrefix = "DEOBF_"

// LocalSettingsFile is looked up in the working directory
const LocalSettingsFile = "deobf.toml"

var log = logging.GetLogger("config")

// Settings controls how deobf runs, independent of any deobfuscation target.
type Settings struct {
	CacheDir   string     `koanf:"cache_dir"`
	Offline    bool       `koanf:"offline"`
	Repository Repository `koanf:"repository"`
	Java       Java       `koanf:"java"`
}

// Repository locates installed artifacts and where missing ones are fetched from
type Repository struct {
	Local   string   `koanf:"local"`
	Remotes []string `koanf:"remotes"`
}

// Java names the binaries used for tool steps and recompilation
type Java struct {
	Binary  string   `koanf:"binary"`
	Javac   string   `koanf:"javac"`
	JVMArgs []string `koanf:"jvmargs"`
}

// LoadOptions controls which layers LoadSettings reads
type LoadOptions struct {
	// Paths supplies the XDG locations; defaults to paths.New()
	Paths paths.Paths
	// File is an explicit settings file (--config). When set, ./deobf.toml is not read.
	File string
	// WorkDir is searched for deobf.toml; defaults to the current directory
	WorkDir string
	// Overrides are dotted keys set from command line flags. They win over
	// every other layer.
	Overrides map[string]interface{}
}

// LoadSettings merges the embedded defaults, the user settings file, the local
// or explicit settings file, DEOBF_* environment variables and flag overrides.
func LoadSettings(opts LoadOptions) (*Settings, error) {
	p := opts.Paths
	if p == nil {
		p = paths.New()
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User settings file
	if err := loadOptionalFile(k, p.SettingsPath()); err != nil {
		return nil, err
	}

	// 3. Explicit file, or deobf.toml in the working directory
	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %s", opts.File)
		}
	} else {
		workDir := opts.WorkDir
		if workDir == "" {
			workDir = "."
		}
		if err := loadOptionalFile(k, filepath.Join(workDir, LocalSettingsFile)); err != nil {
			return nil, err
		}
	}

	// 4. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Command line flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply flag overrides")
		}
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	applyPathDefaults(&s, p)
	return &s, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %s", path)
	}
	log.Debug().Str("path", path).Msg("Loaded settings file")
	return nil
}

// envKey maps DEOBF_JAVA__BINARY to java.binary and DEOBF_CACHE_DIR to cache_dir.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// EnvironmentDir is the work tree of one backend and game version below the cache dir.
func (s *Settings) EnvironmentDir(backend, version string) string {
	return filepath.Join(s.CacheDir, paths.EnvironmentsDir, backend, version)
}

func applyPathDefaults(s *Settings, p paths.Paths) {
	if s.CacheDir == "" {
		s.CacheDir = p.CacheDir()
	}
	if s.Repository.Local == "" {
		s.Repository.Local = p.RepositoryDir()
	}
	if s.Java.Binary == "" {
		s.Java.Binary = "java"
	}
	if s.Java.Javac == "" {
		s.Java.Javac = "javac"
	}
}
