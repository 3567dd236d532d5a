// pkg/environment/environment_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem, httptest server, mock Launcher
// PURPOSE: Test downloads, side selection, source processing, recompilation and export

package environment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/process"
	"github.com/arthur-debert/deobf/pkg/testutil"
)

const mcpConfig = `{
  "spec": 1,
  "data": {},
  "functions": {},
  "steps": {
    "client": [{"type": "inject", "name": "final", "input": "{downloadClientOutput}"}],
    "server": [{"type": "inject", "name": "final", "input": "{downloadServerOutput}"}],
    "joined": [{"type": "inject", "name": "final", "input": "{downloadClientOutput}"}]
  }
}`

const yarnConfig = `{
  "spec": 1,
  "data": {"mappings": "removed.txt"},
  "functions": {},
  "steps": {
    "client": [
      {"type": "inject", "name": "decompile", "input": "{downloadClientOutput}"},
      {"type": "strip", "name": "final", "input": "{decompileOutput}", "mode": "blacklist"}
    ],
    "server": [{"type": "inject", "name": "final", "input": "{downloadServerOutput}"}]
  }
}`

const methods = "searge,name,side,desc\nfunc_1_a,doThing,0,\n"

const source = "package net.minecraft;\nimport javax.annotation.Nullable;\nclass A { @Nullable Object func_1_a() { return null; } }\n"

type fixture struct {
	dir      string
	repo     *artifact.Repository
	client   artifact.Coordinate
	server   artifact.Coordinate
	library  artifact.Coordinate
	srv      *httptest.Server
	requests atomic.Int32
	launcher *testutil.MockLauncher
}

func newFixture(t *testing.T, configJSON string) *fixture {
	t.Helper()
	f := &fixture{
		dir:      t.TempDir(),
		client:   artifact.MustParse("net.minecraft:client:1.16.5"),
		server:   artifact.MustParse("net.minecraft:server:1.16.5"),
		library:  artifact.MustParse("com.mojang:brigadier:1.0.17"),
		launcher: &testutil.MockLauncher{OnLaunch: testutil.FakeJavac("net/minecraft/A.class")},
	}
	f.repo = artifact.NewRepository(filepath.Join(f.dir, "repository"), nil)

	testutil.WriteJar(t, f.repo.Path(f.client),
		archive.File{Name: "net/minecraft/A.java", Data: []byte(source)},
		archive.File{Name: "net/Removed.class", Data: []byte("r")},
		archive.File{Name: "assets/lang/en_us.json", Data: []byte("{}")},
		archive.File{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n")},
	)
	testutil.WriteJar(t, f.repo.Path(f.server),
		archive.File{Name: "net/minecraft/A.java", Data: []byte(source)},
		archive.File{Name: "data/minecraft/loot.json", Data: []byte("{}")},
	)
	testutil.WriteJar(t, f.repo.Path(f.library), archive.File{Name: "B.class", Data: []byte("b")})
	require.NoError(t, f.repo.WritePom(f.client, []artifact.Dependency{{Coordinate: f.library, Scope: artifact.ScopeCompile}}))

	configZip := testutil.ZipBytes(t,
		archive.File{Name: "config.json", Data: []byte(configJSON)},
		archive.File{Name: "removed.txt", Data: []byte("net/Removed\n")},
	)
	mappingsZip := testutil.ZipBytes(t, archive.File{Name: "methods.csv", Data: []byte(methods)})

	mux := http.NewServeMux()
	serve := func(data []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.requests.Add(1)
			_, _ = w.Write(data)
		}
	}
	mux.Handle("/config.zip", serve(configZip))
	mux.Handle("/mappings.zip", serve(mappingsZip))
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) descriptor(backend string) *config.Descriptor {
	return &config.Descriptor{
		Backend:         backend,
		ConfigURL:       f.srv.URL + "/config.zip",
		ConfigVersion:   "20210115",
		MappingsURL:     f.srv.URL + "/mappings.zip",
		MappingsVersion: "snapshot_1",
		Client:          f.client.String(),
		Server:          f.server.String(),
	}
}

func (f *fixture) environment(t *testing.T, desc *config.Descriptor, fetcher fetch.Fetcher) *Environment {
	t.Helper()
	env, err := New(Options{
		Descriptor: desc,
		WorkDir:    filepath.Join(f.dir, "work"),
		Repository: f.repo,
		Fetcher:    fetcher,
		Launcher:   f.launcher,
	})
	require.NoError(t, err)
	return env
}

func TestEnvironment_MCP(t *testing.T) {
	f := newFixture(t, mcpConfig)
	f.launcher.On("Launch", mock.Anything, testutil.Program("javac")).Return(&process.Result{}, nil)
	env := f.environment(t, f.descriptor(config.BackendMCP), fetch.NewHTTPFetcher(time.Minute))

	assert.Equal(t, "mcp", env.Name())
	assert.Equal(t, []string{SideClient, SideServer, SideJoined}, env.Sides())

	results, err := env.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(2), f.requests.Load())

	for _, res := range results {
		sources := f.repo.Path(env.SourcesArtifact(res.Side, "1.16.5"))
		assert.Equal(t, sources, res.Sources)
		assert.Equal(t,
			"package net.minecraft;\nclass A { Object doThing() { return null; } }\n\n",
			testutil.JarEntry(t, sources, "net/minecraft/A.java"), res.Side)

		compiled := f.repo.Path(env.Artifact(res.Side, "1.16.5"))
		assert.Equal(t, compiled, res.Compiled)
		assert.Equal(t, "compiled", testutil.JarEntry(t, compiled, "net/minecraft/A.class"))
		assert.FileExists(t, f.repo.PomPath(env.Artifact(res.Side, "1.16.5")))
	}
	f.launcher.AssertNumberOfCalls(t, "Launch", 3)

	joined := f.repo.Path(env.Artifact(SideJoined, "1.16.5"))
	names := testutil.JarNames(t, joined)
	assert.Contains(t, names, "assets/lang/en_us.json")
	assert.Contains(t, names, "data/minecraft/loot.json")

	deps, err := f.repo.Dependencies(env.Artifact(SideJoined, "1.16.5"))
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, f.library, deps[0].Coordinate)

	compile, err := env.CompileArtifacts()
	require.NoError(t, err)
	assert.Equal(t, "net.minecraft:joined:1.16.5:mcp-20210115_snapshot_1", compile[0].String())

	// Cached archives and outputs: no downloads, no step work
	_, err = env.Run(context.Background(), SideClient)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.requests.Load())
}

func TestEnvironment_Yarn(t *testing.T) {
	f := newFixture(t, yarnConfig)
	f.launcher.On("Launch", mock.Anything, testutil.Program("javac")).Return(&process.Result{}, nil)
	desc := f.descriptor(config.BackendYarn)
	desc.ExportSources = filepath.Join(f.dir, "export")
	env := f.environment(t, desc, fetch.NewHTTPFetcher(time.Minute))

	assert.Equal(t, []string{SideClient, SideServer}, env.Sides())

	results, err := env.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, source+"\n", testutil.JarEntry(t, results[0].Sources, "net/minecraft/A.java"), "yarn sources are not remapped")
	assert.NotEmpty(t, results[0].Compiled)
	assert.Empty(t, results[1].Compiled, "only the client is recompiled")
	f.launcher.AssertNumberOfCalls(t, "Launch", 1)

	assert.FileExists(t, filepath.Join(desc.ExportSources, ExportClean, "net", "Removed.class"))
	assert.NoFileExists(t, filepath.Join(desc.ExportSources, ExportModified, "net", "Removed.class"))
	assert.FileExists(t, filepath.Join(desc.ExportSources, ExportModified, "net", "minecraft", "A.java"))
	assert.NoDirExists(t, filepath.Join(desc.ExportSources, ExportModified, "assets"))
	assert.NoDirExists(t, filepath.Join(desc.ExportSources, ExportModified, "META-INF"))

	compile, err := env.RuntimeArtifacts()
	require.NoError(t, err)
	assert.Equal(t, "net.minecraft:client:1.16.5:yarn-20210115_snapshot_1", compile[0].String())
}

func TestEnvironment_Offline(t *testing.T) {
	f := newFixture(t, mcpConfig)
	env := f.environment(t, f.descriptor(config.BackendMCP), fetch.Offline())

	_, err := env.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetworkUnavailable(err))
	assert.Equal(t, int32(0), f.requests.Load())
}

func TestEnvironment_MissingLibrary(t *testing.T) {
	f := newFixture(t, mcpConfig)
	require.NoError(t, os.Remove(f.repo.Path(f.library)))
	env := f.environment(t, f.descriptor(config.BackendMCP), fetch.NewHTTPFetcher(time.Minute))

	_, err := env.Run(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrArtifactMissing))
}

func TestEnvironment_UnknownSide(t *testing.T) {
	f := newFixture(t, yarnConfig)
	env := f.environment(t, f.descriptor(config.BackendYarn), fetch.NewHTTPFetcher(time.Minute))

	_, err := env.Run(context.Background(), SideJoined)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoSuchSide))
}

func TestEnvironment_Version(t *testing.T) {
	f := newFixture(t, mcpConfig)

	tests := []struct {
		name    string
		client  string
		server  string
		want    string
		errCode errors.ErrorCode
	}{
		{name: "both", client: "net.minecraft:client:1.16.5", server: "net.minecraft:server:1.16.5", want: "1.16.5"},
		{name: "client_only", client: "net.minecraft:client:1.16.5", want: "1.16.5"},
		{name: "server_only", server: "net.minecraft:server:1.15.2", want: "1.15.2"},
		{name: "mismatch", client: "net.minecraft:client:1.16.5", server: "net.minecraft:server:1.16.4", errCode: errors.ErrVersionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := f.descriptor(config.BackendMCP)
			desc.Client, desc.Server = tt.client, tt.server
			env := f.environment(t, desc, nil)

			got, err := env.Version()
			if tt.errCode != "" {
				assert.True(t, errors.IsErrorCode(err, tt.errCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_InvalidCoordinate(t *testing.T) {
	f := newFixture(t, mcpConfig)
	desc := f.descriptor(config.BackendMCP)
	desc.Client = "not-a-coordinate"

	_, err := New(Options{Descriptor: desc, Repository: f.repo})
	assert.True(t, errors.IsConfiguration(err))
}

func TestExportable(t *testing.T) {
	for name, want := range map[string]bool{
		"net/minecraft/A.java":  true,
		"assets/icon.png":       false,
		"pack.png":              false,
		"META-INF/MANIFEST.MF":  false,
		"log4j2.xml":            false,
		"net/minecraft/B.class": true,
		"data/minecraft/x.json": true,
	} {
		assert.Equal(t, want, exportable(name), name)
	}
}
