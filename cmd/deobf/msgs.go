package deobf

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort    = "Deobfuscate, remap and recompile game jars"
	MsgRunShort     = "Run an environment descriptor end to end"
	MsgStepsShort   = "Run one side of a pipeline configuration"
	MsgRemapShort   = "Remap obfuscated names in a source jar"
	MsgPatchShort   = "Apply a directory of patches to a jar"
	MsgConfigShort  = "Print the effective settings"
	MsgVersionShort = "Print version information"

	MsgCompletionShort = "Generate shell completion script"

	// Results
	MsgRunDone       = "Processed %d side(s) of %s %s"
	MsgStepsDone     = "Side %s produced %s"
	MsgRemapDone     = "Remapped %s with %d names into %s"
	MsgPatchDone     = "Applied %d patch(es) into %s"
	MsgPatchUnused   = "Patch for %s matched no entry"
	MsgNotRecompiled = "(not recompiled)"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Settings file to use instead of ./deobf.toml"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagOffline  = "Never download; fail when something is missing"
	MsgFlagSide     = "Side to process (repeatable); defaults to every side"
	MsgFlagBackend  = "Backend whose defaults apply: mcp or yarn"
	MsgFlagClient   = "Client artifact coordinate"
	MsgFlagServer   = "Server artifact coordinate"
	MsgFlagSeed     = "Extra variable for the configuration, as key=value"
	MsgFlagMappings = "Mapping CSV files (comma separated or repeated)"
	MsgFlagStrip    = "Also strip annotations and their imports"
	MsgFlagPatches  = "Directory holding the patches"
	MsgFlagSuffix   = "Suffix of patch files"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/steps-long.txt
	msgStepsLongRaw string
	MsgStepsLong    = strings.TrimSpace(msgStepsLongRaw)

	//go:embed msgs/steps-example.txt
	msgStepsExampleRaw string
	MsgStepsExample    = strings.TrimRight(msgStepsExampleRaw, "\n")

	//go:embed msgs/remap-long.txt
	msgRemapLongRaw string
	MsgRemapLong    = strings.TrimSpace(msgRemapLongRaw)

	//go:embed msgs/patch-long.txt
	msgPatchLongRaw string
	MsgPatchLong    = strings.TrimSpace(msgPatchLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
