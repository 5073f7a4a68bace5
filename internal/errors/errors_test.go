package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesClassificationFromCode(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeCacheRead, CategoryCache, SeverityWarning, true},
		{ErrCodeCacheWrite, CategoryCache, SeverityWarning, true},
		{ErrCodeEmbeddingFailed, CategoryNetwork, SeverityFatal, false},
		{ErrCodeNetworkTimeout, CategoryNetwork, SeverityError, true},
		{ErrCodeQueryEmpty, CategoryValidation, SeverityError, false},
		{ErrCodeInvalidScope, CategoryValidation, SeverityFatal, false},
		{ErrCodeIndexQuery, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestCoreError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(ErrCodeNetworkUnavailable, "embedding host unreachable", cause)

	assert.Equal(t, "[ERR_303_NETWORK_UNAVAILABLE] embedding host unreachable", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCoreError_IsMatchesByCode(t *testing.T) {
	err := IndexError("group index offline", nil)

	assert.ErrorIs(t, err, New(ErrCodeIndexQuery, "other message", nil))
	assert.NotErrorIs(t, err, New(ErrCodeInternal, "other message", nil))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeCacheRead, nil))

	cause := stderrors.New("redis: connection pool timeout")
	err := Wrap(ErrCodeCacheRead, cause)
	require.NotNil(t, err)
	assert.Equal(t, cause.Error(), err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWithDetail(t *testing.T) {
	err := ValidationError("top_n out of range", nil).
		WithDetail("top_n", "5000").
		WithDetail("max", "100")

	assert.Equal(t, "5000", err.Details["top_n"])
	assert.Equal(t, "100", err.Details["max"])
}

func TestInspectionHelpers(t *testing.T) {
	fatal := EmbeddingError("model down", nil)
	retryable := New(ErrCodeNetworkTimeout, "slow", nil)
	plain := stderrors.New("plain")

	assert.True(t, IsFatal(fatal))
	assert.False(t, IsFatal(retryable))
	assert.False(t, IsFatal(plain))
	assert.False(t, IsFatal(nil))

	assert.True(t, IsRetryable(retryable))
	assert.False(t, IsRetryable(fatal))
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsRetryable(nil))

	assert.Equal(t, ErrCodeEmbeddingFailed, GetCode(fatal))
	assert.Empty(t, GetCode(plain))
	assert.Equal(t, CategoryNetwork, GetCategory(fatal))
	assert.Empty(t, string(GetCategory(plain)))
}
