// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, classification helpers

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deobf/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "no_such_side",
			code:    errors.ErrNoSuchSide,
			message: "side not registered",
			wantStr: "[NO_SUCH_SIDE] side not registered",
		},
		{
			name:    "unsupported_spec",
			code:    errors.ErrUnsupportedSpec,
			message: "spec 2 not supported",
			wantStr: "[UNSUPPORTED_SPEC] spec 2 not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnresolvedVariable, "variable %q not found for side %s", "mappings", "client")
	assert.Equal(t, `variable "mappings" not found for side client`, err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrCacheIO, "cannot delete stale output")

		assert.Equal(t, errors.ErrCacheIO, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[CACHE_IO] cannot delete stale output: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrStepExecute, "step failed").
		WithDetail("side", "client").
		WithDetails(map[string]interface{}{"step": "decompile", "exit": 1})

	assert.Equal(t, "client", err.Details["side"])
	assert.Equal(t, "decompile", err.Details["step"])
	assert.Equal(t, 1, err.Details["exit"])
	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "error 1")
	err2 := errors.New(errors.ErrNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.True(t, stderrors.Is(err1, err2))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "inner_code_of_chain",
			err:      errors.Wrap(errors.New(errors.ErrToolFailed, "exit 1"), errors.ErrStepExecute, "step failed"),
			code:     errors.ErrToolFailed,
			expected: true,
		},
		{
			name:     "through_fmt_wrapping",
			err:      fmt.Errorf("outer: %w", errors.New(errors.ErrPatchConflict, "conflict")),
			code:     errors.ErrPatchConflict,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrNoActions, errors.GetErrorCode(errors.New(errors.ErrNoActions, "empty")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestCategories(t *testing.T) {
	stepErr := errors.Wrap(errors.New(errors.ErrPatchConflict, "hunk 1"), errors.ErrStepExecute, "patch failed")
	configErr := errors.Wrap(errors.New(errors.ErrUnresolvedVariable, "x"), errors.ErrStepPrepare, "prepare failed")
	offline := errors.New(errors.ErrNetworkUnavailable, "offline")

	t.Run("step_failure", func(t *testing.T) {
		assert.True(t, errors.IsStepFailure(stepErr))
		assert.False(t, errors.IsConfiguration(stepErr))
	})

	t.Run("configuration_found_below_step_error", func(t *testing.T) {
		assert.True(t, errors.IsConfiguration(configErr))
		assert.True(t, errors.IsStepFailure(configErr))
	})

	t.Run("network_unavailable", func(t *testing.T) {
		wrapped := errors.Wrap(offline, errors.ErrStepExecute, "tool install failed")
		assert.True(t, errors.IsNetworkUnavailable(wrapped))
		assert.False(t, errors.IsNetworkUnavailable(stepErr))
	})
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	ioErr := errors.Wrap(rootCause, errors.ErrCacheIO, "cannot create directory")
	prepErr := errors.Wrap(ioErr, errors.ErrStepPrepare, "failed to prepare step")

	require.True(t, errors.IsErrorCode(prepErr, errors.ErrStepPrepare))

	var inner *errors.DeobfError
	require.True(t, stderrors.As(prepErr.Unwrap(), &inner))
	assert.Equal(t, errors.ErrCacheIO, inner.Code)
	assert.True(t, stderrors.Is(prepErr, rootCause))
}
