package mappings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadClassSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	tsrg := "a net/minecraft/util/Foo\n\ta b\n\tfunc_1_a ()V c\nb net/minecraft/util/Bar\r\n\ncom/mojang/Baz com/mojang/Baz\n"
	require.NoError(t, afero.WriteFile(fs, "/config/joined.tsrg", []byte(tsrg), 0644))

	set, err := ReadClassSet(fs, "/config/joined.tsrg")
	require.NoError(t, err)

	assert.Len(t, set, 3)
	assert.True(t, set.Contains("a.class"))
	assert.True(t, set.Contains("b.class"))
	assert.True(t, set.Contains("com/mojang/Baz.class"))
	assert.False(t, set.Contains("func_1_a.class"))
}

func TestReadClassSet_Missing(t *testing.T) {
	_, err := ReadClassSet(afero.NewMemMapFs(), "/missing.tsrg")
	assert.Error(t, err)
}
