package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicates_FollowCauseChain(t *testing.T) {
	inner := ErrTimeout.WithMessage("authority did not answer within 2s")
	resolution := Wrap(inner, ErrResolution)
	translation := Wrap(fmt.Errorf("stasis start: %w", resolution), ErrTranslation)

	assert.True(t, IsTranslation(translation))
	assert.True(t, IsResolution(translation))
	assert.True(t, IsTimeout(translation))
	assert.False(t, IsNotFound(translation))
	assert.False(t, IsSink(translation))
}

func TestErrorsIs_MatchesCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrNotFound.WithDetail("resource_id", "ch-1"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	_ = ErrPersistence.WithDetail("key", "callcontext:ch-1")
	assert.Empty(t, ErrPersistence.Details)
}

func TestError_MessageOverride(t *testing.T) {
	err := ErrNotFound.WithMessage("no call context bound to ch-9")
	assert.Equal(t, "NOT_FOUND: no call context bound to ch-9", err.Error())
}

func TestCode(t *testing.T) {
	assert.Equal(t, "SINK_FAILED", Code(Wrap(errors.New("broker down"), ErrSink)))
	assert.Equal(t, "INTERNAL_ERROR", Code(errors.New("plain")))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrSink))
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("boom")
	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Equal(t, "INTERNAL_ERROR", Code(err))
}

func TestRecoverPanic_KeepsAppCode(t *testing.T) {
	err := RecoverPanic(ErrValidation.WithMessage("bad frame"))

	assert.True(t, IsValidation(err))
	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.IsFatal())
}
