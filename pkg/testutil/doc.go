// Package testutil provides fixtures shared by the deobf test suites.
//
//   - files and jars written below t.TempDir() (WriteFile, WriteJar, ZipBytes)
//   - reading jar entries back (JarEntry, JarNames)
//   - testify mocks for the process.Launcher and fetch.Fetcher collaborators
//
// Helpers fail the test through require instead of returning errors.
package testutil
