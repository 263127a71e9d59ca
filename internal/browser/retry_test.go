package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStaleNode(t *testing.T) {
	assert.True(t, IsStaleNode(errors.New("Could not find node with given id (-32000)")))
	assert.True(t, IsStaleNode(errors.New("node resolution failed")))
	assert.True(t, IsStaleNode(fmt.Errorf("click failed: %w", errors.New("No node with given id found"))))
	assert.False(t, IsStaleNode(errors.New("net::ERR_CONNECTION_REFUSED")))
	assert.False(t, IsStaleNode(nil))
}

func TestWithStaleRetryRestartsOnStaleOnly(t *testing.T) {
	calls := 0
	err := WithStaleRetry(func() error {
		calls++
		if calls < 4 {
			return errors.New("could not find node")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, calls, "Stale failures restart the operation until it sticks")
}

func TestWithStaleRetryPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("element is not visible")
	calls := 0
	err := WithStaleRetry(func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "Non-stale failures are not retried")
}

func TestWithStaleRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	require.NoError(t, WithStaleRetry(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
