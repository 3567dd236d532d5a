// Package patch applies unified diffs to text, strictly.
//
// Hunks are parsed with sourcegraph/go-diff and applied in order at the exact
// line offsets they declare. Every context and removal line must match the
// target; the first mismatch is a *ConflictError. There is no fuzz factor, no
// offset search and no three-way merge: a patch either applies exactly or the
// caller fails.
package patch
