package display

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/deobf/pkg/errors"
)

func TestTable_AddRow(t *testing.T) {
	table := Table{Header: []string{"step", "state"}}
	table.AddRow("decompile", "executed")
	table.AddRow("patch")
	table.AddRow("a", "b", "extra")

	assert.Equal(t, [][]string{{"decompile", "executed"}, {"patch", ""}, {"a", "b"}}, table.Rows)
	assert.Equal(t, []map[string]string{
		{"step": "decompile", "state": "executed"},
		{"step": "patch", "state": ""},
		{"step": "a", "state": "b"},
	}, table.Records())
}

func TestErrorDetails(t *testing.T) {
	err := errors.New(errors.ErrStepExecute, "step failed").
		WithDetail("step", "patch").
		WithDetail("side", "client")
	assert.Equal(t, []string{"side: client", "step: patch"}, ErrorDetails(err))

	assert.Empty(t, ErrorDetails(fmt.Errorf("plain")))
}
