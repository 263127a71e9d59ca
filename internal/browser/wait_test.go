package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionString(t *testing.T) {
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "visible", Visible.String())
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "unknown", Condition(42).String())
}

func TestPollUntilReturnsOnDone(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), time.Millisecond, func() (bool, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollUntilPropagatesError(t *testing.T) {
	boom := errors.New("snapshot failed")
	err := PollUntil(context.Background(), time.Millisecond, func() (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollUntilStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := PollUntil(ctx, time.Millisecond, func() (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollUntilEvaluatesBeforeFirstTick(t *testing.T) {
	// An already-true condition needs no tick, even with a long
	// interval.
	start := time.Now()
	err := PollUntil(context.Background(), time.Hour, func() (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
