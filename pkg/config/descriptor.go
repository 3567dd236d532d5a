package config

import (
	"bytes"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Backends understood by the environment front-end
const (
	BackendMCP  = "mcp"
	BackendYarn = "yarn"
)

// Descriptor describes one deobfuscation target.
type Descriptor struct {
	// Backend selects the environment front-end: "mcp" or "yarn"
	Backend string `toml:"backend"`

	ConfigURL       string `toml:"config_url"`
	ConfigVersion   string `toml:"config_version"`
	MappingsURL     string `toml:"mappings_url"`
	MappingsVersion string `toml:"mappings_version"`

	// Client and Server are artifact coordinates of the obfuscated jars in the
	// local repository. At least one must be set.
	Client string `toml:"client"`
	Server string `toml:"server"`

	// Marker overrides the zero-length entry added by inject steps
	Marker string `toml:"marker"`

	// ExportSources, when set, receives clean/ and modified/ source trees (yarn only)
	ExportSources string `toml:"export_sources"`
}

// LoadDescriptor reads and validates a descriptor file. Unknown keys are rejected.
func LoadDescriptor(path string) (*Descriptor, error) {
	logger := log.With().Str("path", path).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read descriptor %s", path)
	}

	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("backend", d.Backend).
		Str("config_version", d.ConfigVersion).
		Str("mappings_version", d.MappingsVersion).
		Msg("Descriptor loaded")
	return d, nil
}

// ParseDescriptor decodes descriptor TOML and validates it.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse descriptor")
	}

	d.Backend = strings.ToLower(strings.TrimSpace(d.Backend))
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks required fields.
func (d *Descriptor) Validate() error {
	switch d.Backend {
	case BackendMCP, BackendYarn:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown backend %q", d.Backend).
			WithDetail("allowed", []string{BackendMCP, BackendYarn})
	}

	missing := []string{}
	for name, value := range map[string]string{
		"config_url":       d.ConfigURL,
		"config_version":   d.ConfigVersion,
		"mappings_url":     d.MappingsURL,
		"mappings_version": d.MappingsVersion,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrConfigValid, "descriptor is missing required keys").
			WithDetail("missing", missing)
	}

	if d.Client == "" && d.Server == "" {
		return errors.New(errors.ErrConfigValid, "descriptor needs a client or server artifact")
	}
	if d.ExportSources != "" && d.Backend != BackendYarn {
		return errors.New(errors.ErrConfigValid, "export_sources is only supported by the yarn backend")
	}
	return nil
}
