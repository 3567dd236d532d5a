package pipeline

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/patch"
	"github.com/arthur-debert/deobf/pkg/process"
)

// ConfigFileName is read from Options.Dir by Load
const ConfigFileName = "config.json"

// Inject markers per backend
const (
	MarkerMCP  = ".mcp-processed"
	MarkerYarn = ".yarn-processed"
)

// Options carries everything a Run needs
type Options struct {
	// Dir holds config.json; data paths are relative to it and step
	// outputs go to Dir/steps/<side>/
	Dir string

	// Backend selects the defaults for Marker and PatchSuffix
	Backend string
	// Marker is the entry appended by inject steps
	Marker string
	// PatchSuffix selects the patch files of patch steps
	PatchSuffix string

	// Client and Server are the obfuscated game jars. The client POM lists
	// the libraries of listLibraries steps.
	Client *artifact.Coordinate
	Server *artifact.Coordinate

	Repository *artifact.Repository
	Java       *process.Java

	// Fs reads mappings and patches; defaults to the OS filesystem
	Fs afero.Fs

	// Seeds are added to the registry before the configuration is parsed
	Seeds map[string]string

	Logger *zerolog.Logger
}

func (o *Options) applyDefaults() {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Marker == "" {
		o.Marker = MarkerMCP
		if o.Backend == config.BackendYarn {
			o.Marker = MarkerYarn
		}
	}
	if o.PatchSuffix == "" {
		o.PatchSuffix = patch.SuffixJava
		if o.Backend == config.BackendYarn {
			o.PatchSuffix = patch.SuffixAny
		}
	}
}
