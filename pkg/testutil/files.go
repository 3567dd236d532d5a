package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/archive"
)

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile returns the content of path
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// WriteJar writes a jar holding files, in name order, to path
func WriteJar(t *testing.T, path string, files ...archive.File) string {
	t.Helper()
	require.NoError(t, archive.Write(path, files))
	return path
}

// ZipBytes returns the bytes of a zip holding files, for serving over HTTP
func ZipBytes(t *testing.T, files ...archive.File) []byte {
	t.Helper()
	return []byte(ReadFile(t, WriteJar(t, filepath.Join(t.TempDir(), "fixture.zip"), files...)))
}

// JarEntry returns the content of the named entry of jar
func JarEntry(t *testing.T, jar, name string) string {
	t.Helper()
	data, err := archive.ReadEntry(jar, name)
	require.NoError(t, err)
	return string(data)
}

// JarNames returns the entry names of jar in archive order
func JarNames(t *testing.T, jar string) []string {
	t.Helper()
	names, err := archive.Names(jar)
	require.NoError(t, err)
	return names
}
