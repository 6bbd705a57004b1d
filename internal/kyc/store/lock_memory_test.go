package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irdesk/pkg/platform/sentinel"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire is rejected until release", func(t *testing.T) {
		l := NewMemoryLocker()
		release, err := l.Acquire(ctx, "inv-1")
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "inv-1")
		assert.ErrorIs(t, err, sentinel.ErrLocked)

		other, err := l.Acquire(ctx, "inv-2")
		require.NoError(t, err, "keys are independent")
		other()

		release()
		again, err := l.Acquire(ctx, "inv-1")
		require.NoError(t, err)
		again()
	})

	t.Run("release is idempotent", func(t *testing.T) {
		l := NewMemoryLocker()
		first, err := l.Acquire(ctx, "inv-1")
		require.NoError(t, err)
		first()

		second, err := l.Acquire(ctx, "inv-1")
		require.NoError(t, err)
		first()

		_, err = l.Acquire(ctx, "inv-1")
		assert.ErrorIs(t, err, sentinel.ErrLocked, "stale release must not free the new holder")
		second()
	})

	t.Run("exactly one concurrent winner", func(t *testing.T) {
		l := NewMemoryLocker()
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := l.Acquire(ctx, "inv-1"); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
