// pkg/artifact/artifact_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Filesystem, mock Fetcher
// PURPOSE: Test coordinate parsing, repository layout, installation and POM handling

package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Coordinate
		wantErr bool
	}{
		{name: "plain", in: "net.minecraft:client:1.16.5", want: Coordinate{Group: "net.minecraft", Name: "client", Version: "1.16.5"}},
		{name: "classifier", in: "net.minecraft:client:1.16.5:mcp-1_2", want: Coordinate{Group: "net.minecraft", Name: "client", Version: "1.16.5", Classifier: "mcp-1_2"}},
		{name: "extension", in: "de.oceanlabs.mcp:mcp_config:1.16.5@zip", want: Coordinate{Group: "de.oceanlabs.mcp", Name: "mcp_config", Version: "1.16.5", Extension: "zip"}},
		{name: "all_parts", in: "a:b:1:c@pom", want: Coordinate{Group: "a", Name: "b", Version: "1", Classifier: "c", Extension: "pom"}},
		{name: "too_short", in: "a:b", wantErr: true},
		{name: "empty_part", in: "a::1", wantErr: true},
		{name: "empty_extension", in: "a:b:1@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestCoordinate_Paths(t *testing.T) {
	c := MustParse("net.minecraft:client:1.16.5")
	assert.Equal(t, "net/minecraft/client/1.16.5/client-1.16.5.jar", c.RelativePath())
	assert.Equal(t, "net/minecraft/client/1.16.5/client-1.16.5-sources.jar", c.WithClassifier("sources").RelativePath())
	assert.Equal(t, "net/minecraft/client/1.16.5/client-1.16.5.zip", c.WithExtension("zip").RelativePath())
	assert.Equal(t, "net/minecraft/client/1.16.5/client-1.16.5.pom", c.WithClassifier("sources").PomRelativePath())
}

func TestRepository_Install(t *testing.T) {
	root := t.TempDir()
	c := MustParse("org.example:tool:2.0")

	f := new(testutil.MockFetcher)
	f.On("Fetch", "https://one.example/org/example/tool/2.0/tool-2.0.jar", mock.Anything).
		Return(errors.New(errors.ErrNotFound, "404"))
	f.On("Fetch", "https://two.example/org/example/tool/2.0/tool-2.0.jar", mock.Anything).Return(nil)
	f.On("Fetch", "https://two.example/org/example/tool/2.0/tool-2.0.pom", mock.Anything).Return(nil)

	repo := NewRepository(root, f, "https://one.example/", "https://two.example")
	assert.False(t, repo.IsInstalled(c))

	path, err := repo.Install(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "org", "example", "tool", "2.0", "tool-2.0.jar"), path)
	assert.True(t, repo.IsInstalled(c))
	assert.FileExists(t, repo.PomPath(c))

	// Second install is a no-op
	_, err = repo.Install(context.Background(), c)
	require.NoError(t, err)
	f.AssertNumberOfCalls(t, "Fetch", 3)
}

func TestRepository_InstallOffline(t *testing.T) {
	repo := NewRepository(t.TempDir(), fetch.Offline(), "https://one.example")
	_, err := repo.Install(context.Background(), MustParse("org.example:tool:2.0"))
	assert.True(t, errors.IsNetworkUnavailable(err))
}

func TestRepository_InstallNotFound(t *testing.T) {
	f := new(testutil.MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything).Return(errors.New(errors.ErrNotFound, "404"))

	repo := NewRepository(t.TempDir(), f, "https://one.example")
	_, err := repo.Install(context.Background(), MustParse("org.example:tool:2.0"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrArtifactMissing))
}

func TestPom_RoundTrip(t *testing.T) {
	repo := NewRepository(t.TempDir(), nil)
	c := MustParse("net.minecraft:client:1.16.5")
	deps := []Dependency{
		{Coordinate: MustParse("com.mojang:brigadier:1.0.17"), Scope: ScopeCompile},
		{Coordinate: MustParse("org.lwjgl:lwjgl:3.2.2:natives-linux"), Scope: ScopeRuntime},
	}
	require.NoError(t, repo.WritePom(c, deps))

	got, err := repo.Dependencies(c)
	require.NoError(t, err)
	assert.Equal(t, deps, got)
}

func TestReadPom_FiltersScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pom")
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version="1.0"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>g</groupId>
  <artifactId>x</artifactId>
  <version>1</version>
  <dependencies>
    <dependency><groupId>g</groupId><artifactId>a</artifactId><version>1</version></dependency>
    <dependency><groupId>g</groupId><artifactId>b</artifactId><version>1</version><scope>test</scope></dependency>
    <dependency><groupId>g</groupId><artifactId>c</artifactId><version>1</version><scope>runtime</scope><optional>true</optional></dependency>
  </dependencies>
</project>`), 0644))

	deps, err := ReadPom(path)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "g:a:1", deps[0].String())
	assert.Equal(t, ScopeCompile, deps[0].Scope)
	assert.Equal(t, "g:c:1", deps[1].String())
	assert.True(t, deps[1].Optional)
}

func TestDependencies_MissingPom(t *testing.T) {
	repo := NewRepository(t.TempDir(), nil)
	_, err := repo.Dependencies(MustParse("g:x:1"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrArtifactMissing))
}
