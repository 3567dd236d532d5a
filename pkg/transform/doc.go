// Package transform rewrites the source entries of an archive through an
// ordered chain of text actions.
//
// An Action is a pure function from the whole text of one source file to its
// replacement. A Chain runs its actions in order, each seeing the output of
// the previous one. Process copies an archive, sending every ".java" entry
// through the chain and copying all other entries byte for byte.
//
// Provided actions:
//
//   - Remapper replaces obfuscated member names using a mappings.Table
//   - AnnotationStripper removes annotations that do not exist on the
//     recompilation classpath, together with their imports
//   - Identity returns its input unchanged
package transform
