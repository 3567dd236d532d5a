// cmd/deobf/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem, environment variables
// PURPOSE: Test the command line surface end to end without network or java

package deobf

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/testutil"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, env := range []string{"DEOBF_CACHE_DIR", "DEOBF_CONFIG_DIR", "DEOBF_STATE_DIR", "DEOBF_DATA_DIR"} {
		t.Setenv(env, filepath.Join(root, env))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--format", "text"))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := NewRootCmd()
	names := map[string]string{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = c.GroupID
	}
	for _, name := range []string{"run", "steps", "remap", "patch"} {
		assert.Equal(t, "core", names[name], name)
	}
	for _, name := range []string{"config", "version", "completion"} {
		assert.Equal(t, "misc", names[name], name)
	}
}

func TestRootCmd_NoCommand(t *testing.T) {
	isolate(t)
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "deobf version dev")
}

func TestConfigCmd(t *testing.T) {
	root := isolate(t)
	t.Setenv("DEOBF_OFFLINE", "true")
	t.Setenv("DEOBF_JAVA__BINARY", "/opt/jdk/bin/java")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "/opt/jdk/bin/java")
	assert.Contains(t, out, filepath.Join(root, "DEOBF_CACHE_DIR"))
	assert.Regexp(t, `offline\s+true`, out)
}

func TestConfigCmd_OfflineFlag(t *testing.T) {
	isolate(t)
	t.Setenv("DEOBF_OFFLINE", "false")

	out, err := execute(t, "config", "--offline")
	require.NoError(t, err)
	assert.Regexp(t, `offline\s+true`, out)
}

func TestRemapCmd(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "out.jar")
	require.NoError(t, archive.Write(in, []archive.File{
		{Name: "net/A.java", Data: []byte("import javax.annotation.Nullable;\nclass A { @Nullable Object field_1_b; }\n")},
		{Name: "net/A.class", Data: []byte("binary")},
	}))
	csv := filepath.Join(dir, "fields.csv")
	testutil.WriteFile(t, csv, "searge,name,side,desc\nfield_1_b,count,0,\n")

	stdout, err := execute(t, "remap", in, out, "--mappings", csv, "--strip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "with 1 names")

	data, err := archive.ReadEntry(out, "net/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A { Object count; }\n\n", string(data))

	data, err = archive.ReadEntry(out, "net/A.class")
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestRemapCmd_RequiresMappings(t *testing.T) {
	isolate(t)
	_, err := execute(t, "remap", "in.jar", "out.jar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mappings")
}

func TestPatchCmd(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jar")
	out := filepath.Join(dir, "out.jar")
	require.NoError(t, archive.Write(in, []archive.File{
		{Name: "net/x/Y.java", Data: []byte("class Y {\n    int v = 1;\n}\n")},
	}))
	testutil.WriteFile(t, filepath.Join(dir, "patches", "net", "x", "Y.java.patch"),
		"--- a/net/x/Y.java\n+++ b/net/x/Y.java\n@@ -1,3 +1,3 @@\n class Y {\n-    int v = 1;\n+    int v = 2;\n }\n")
	testutil.WriteFile(t, filepath.Join(dir, "patches", "net", "x", "Gone.java.patch"),
		"--- a/net/x/Gone.java\n+++ b/net/x/Gone.java\n@@ -1,1 +1,1 @@\n-a\n+b\n")

	stdout, err := execute(t, "patch", in, out, "--patches", filepath.Join(dir, "patches"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Warning: Patch for net/x/Gone.java matched no entry")
	assert.Contains(t, stdout, "Applied 1 patch(es)")

	data, err := archive.ReadEntry(out, "net/x/Y.java")
	require.NoError(t, err)
	assert.Equal(t, "class Y {\n    int v = 2;\n}\n", string(data))
}

func TestStepsCmd(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "client.jar")
	require.NoError(t, archive.Write(input, []archive.File{{Name: "A.class", Data: []byte("a")}}))
	testutil.WriteFile(t, filepath.Join(dir, "config", "config.json"), `{
  "spec": 1,
  "data": {},
  "functions": {},
  "steps": {"client": [
    {"type": "downloadClient"},
    {"type": "inject", "name": "mark", "input": "{downloadClientOutput}"}
  ]}
}`)

	args := []string{"steps", filepath.Join(dir, "config", "config.json"), "client", "--seed", "downloadClientOutput=" + input}
	stdout, err := execute(t, args...)
	require.NoError(t, err)
	assert.Regexp(t, `mark\s+inject\s+executed`, stdout)

	output := filepath.Join(dir, "config", "steps", "client", "mark.jar")
	names, err := archive.Names(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.class", ".mcp-processed"}, names)
	assert.FileExists(t, filepath.Join(dir, "config", "steps", "report.toml"))

	stdout, err = execute(t, args...)
	require.NoError(t, err)
	assert.Regexp(t, `mark\s+inject\s+skipped`, stdout)
}

func TestStepsCmd_UnknownSide(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "config.json"), `{"spec": 1, "data": {}, "functions": {}, "steps": {"client": []}}`)

	_, err := execute(t, "steps", dir, "server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_SUCH_SIDE")
}

func TestHelpTopics(t *testing.T) {
	isolate(t)
	out, err := execute(t, "help", "topics")
	require.NoError(t, err)
	for _, name := range []string{"environment", "pipelines", "settings", "variables", "--offline"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "help", "variables")
	require.NoError(t, err)
	assert.Contains(t, out, "Variables")
}
