// pkg/archive/archive_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem
// PURPOSE: Test entry-wise rewriting, extraction, tree packing and resource merging

package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/errors"
)

func writeJar(t *testing.T, path string, files ...File) {
	t.Helper()
	require.NoError(t, Write(path, files))
}

func TestWriteAndNames(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "a.jar")
	writeJar(t, jar, File{Name: "b.txt", Data: []byte("b")}, File{Name: "a.txt", Data: []byte("a")})

	names, err := Names(jar)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	data, err := ReadEntry(jar, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))

	_, err = ReadEntry(jar, "c.txt")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestRewrite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "nested", "out.jar")
	writeJar(t, in,
		File{Name: "keep.class", Data: []byte{0xCA, 0xFE}},
		File{Name: "drop.class", Data: []byte{0x00}},
		File{Name: "Main.java", Data: []byte("class Main {}")},
	)

	err := Rewrite(context.Background(), in, out, func(e *Entry) (Result, error) {
		switch {
		case e.Name() == "drop.class":
			return Drop(), nil
		case strings.HasSuffix(e.Name(), ".java"):
			data, err := e.ReadAll()
			if err != nil {
				return Result{}, err
			}
			return Replace([]byte(strings.ToUpper(string(data)))), nil
		}
		return Keep(), nil
	}, File{Name: ".marker"})
	require.NoError(t, err)

	names, err := Names(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main.java", "keep.class", ".marker"}, names)

	data, _ := ReadEntry(out, "Main.java")
	assert.Equal(t, "CLASS MAIN {}", string(data))
	data, _ = ReadEntry(out, "keep.class")
	assert.Equal(t, []byte{0xCA, 0xFE}, data)
	data, _ = ReadEntry(out, ".marker")
	assert.Empty(t, data)
}

func TestRewrite_ReplaceWithEmpty(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "out.jar")
	writeJar(t, in, File{Name: "x.txt", Data: []byte("content")})

	require.NoError(t, Rewrite(context.Background(), in, out, func(e *Entry) (Result, error) {
		return Replace(nil), nil
	}))

	data, err := ReadEntry(out, "x.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRewrite_FailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "out.jar")
	writeJar(t, in, File{Name: "x.txt", Data: []byte("x")})

	err := Rewrite(context.Background(), in, out, func(e *Entry) (Result, error) {
		return Result{}, errors.New(errors.ErrPatchConflict, "boom")
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatchConflict))
	assert.NoFileExists(t, out)
}

func TestRewrite_PanicRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "out.jar")
	writeJar(t, in, File{Name: "a.txt", Data: []byte("a")}, File{Name: "b.txt", Data: []byte("b")})

	assert.PanicsWithValue(t, "bad entry", func() {
		_ = Rewrite(context.Background(), in, out, func(e *Entry) (Result, error) {
			if e.Name() == "b.txt" {
				panic("bad entry")
			}
			return Keep(), nil
		})
	})
	assert.NoFileExists(t, out)
}

func TestRewrite_Cancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	writeJar(t, in, File{Name: "x.txt"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Rewrite(ctx, in, filepath.Join(dir, "out.jar"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRewrite_MissingInput(t *testing.T) {
	dir := t.TempDir()
	err := Rewrite(context.Background(), filepath.Join(dir, "nope.jar"), filepath.Join(dir, "out.jar"), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchive))
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "src.jar")
	writeJar(t, jar,
		File{Name: "net/x/Y.java", Data: []byte("new")},
		File{Name: "assets/icon.png", Data: []byte("png")},
		File{Name: "Existing.java", Data: []byte("new")},
	)
	target := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "Existing.java"), []byte("old"), 0644))

	err := Extract(context.Background(), jar, target, ExtractOptions{
		Filter: func(name string) bool { return !strings.Contains(name, "assets") },
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(target, "net", "x", "Y.java"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.NoFileExists(t, filepath.Join(target, "assets", "icon.png"))

	data, _ = os.ReadFile(filepath.Join(target, "Existing.java"))
	assert.Equal(t, "old", string(data), "existing files are kept without Overwrite")

	require.NoError(t, Extract(context.Background(), jar, target, ExtractOptions{Overwrite: true}))
	data, _ = os.ReadFile(filepath.Join(target, "Existing.java"))
	assert.Equal(t, "new", string(data))
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "evil.zip")
	f, err := os.Create(jar)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../evil.txt")
	require.NoError(t, err)
	_, _ = w.Write([]byte("x"))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	err = Extract(context.Background(), jar, filepath.Join(dir, "out"), ExtractOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.NoFileExists(t, filepath.Join(dir, "evil.txt"))
}

func TestWriteTrees(t *testing.T) {
	dir := t.TempDir()
	sources := filepath.Join(dir, "sources")
	classes := filepath.Join(dir, "classes")
	for path, content := range map[string]string{
		filepath.Join(sources, "net", "A.java"):       "src",
		filepath.Join(sources, "assets", "lang.json"): "{}",
		filepath.Join(sources, "net", "A.class"):      "stale",
		filepath.Join(classes, "net", "A.class"):      "compiled",
	} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	out := filepath.Join(dir, "out.jar")
	err := WriteTrees(out, func(rel string) bool { return strings.HasSuffix(rel, ".java") }, sources, classes)
	require.NoError(t, err)

	names, _ := Names(out)
	assert.Equal(t, []string{"assets/lang.json", "net/A.class"}, names)
	data, _ := ReadEntry(out, "net/A.class")
	assert.Equal(t, "compiled", string(data))
}

func TestMergeResources(t *testing.T) {
	dir := t.TempDir()
	joined := filepath.Join(dir, "joined.jar")
	client := filepath.Join(dir, "client.jar")
	writeJar(t, joined,
		File{Name: "net/A.class", Data: []byte("a")},
		File{Name: "pack.png", Data: []byte("joined")},
	)
	writeJar(t, client,
		File{Name: "net/B.class", Data: []byte("b")},
		File{Name: "pack.png", Data: []byte("client")},
		File{Name: "assets/minecraft/lang/en_us.json", Data: []byte("{}")},
		File{Name: "data/minecraft/tags/x.json", Data: []byte("{}")},
		File{Name: "version.json", Data: []byte("{}")},
		File{Name: "pack.mcmeta", Data: []byte("{}")},
		File{Name: "log4j2.xml", Data: []byte("<x/>")},
	)

	added, err := MergeResources(context.Background(), joined, client, IsGameResource)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	names, _ := Names(joined)
	assert.ElementsMatch(t, []string{
		"net/A.class", "pack.png", "assets/minecraft/lang/en_us.json",
		"data/minecraft/tags/x.json", "version.json", "pack.mcmeta",
	}, names)
	data, _ := ReadEntry(joined, "pack.png")
	assert.Equal(t, "joined", string(data), "existing resources are not replaced")

	added, err = MergeResources(context.Background(), joined, client, IsGameResource)
	require.NoError(t, err)
	assert.Zero(t, added)
}
