// Package pipeline runs the step lists described by an environment's
// config.json.
//
// A Run holds a variable registry and one ordered list of steps per side.
// Each step produces exactly one output file below <config dir>/steps/<side>/.
// A step whose output already exists is skipped; once any step of a side
// executes, every later step of that side executes too, so stale outputs are
// never combined with fresh ones.
//
// Steps are a closed set: inject, strip, patch, listLibraries and tool. A
// tool step is any step whose type names an entry of the config's functions
// block.
package pipeline
