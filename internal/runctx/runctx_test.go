package runctx

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRunContext(t *testing.T) {
	ctx := WithRunContext(context.Background())
	rc := FromContext(ctx)

	require.NotNil(t, rc)
	assert.NotEqual(t, "unknown", rc.RunID)
	assert.WithinDuration(t, time.Now(), rc.StartTime, time.Second)
}

func TestFromContext_Missing(t *testing.T) {
	rc := FromContext(context.Background())
	assert.Equal(t, "unknown", rc.RunID)
}

func TestNewRunID(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 22, 33, 0, time.UTC)
	id := NewRunID(at)

	assert.Regexp(t, regexp.MustCompile(`^20250301-142233-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewRunID(at), "ids generated in the same second must differ")
}

func TestNewRunError(t *testing.T) {
	ctx := WithRunContext(context.Background())
	cause := errors.New("listing unreachable")

	err := NewRunError(ctx, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), FromContext(ctx).RunID)
}
