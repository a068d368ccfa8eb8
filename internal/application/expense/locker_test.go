package expense

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExpenseLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("serializes holders of the same key", func(t *testing.T) {
		l := NewLocalExpenseLocker()
		id := uuid.New()

		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := l.Lock(ctx, id)
				require.NoError(t, err)
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxInside)
		assert.Equal(t, 0, l.held())
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		l := NewLocalExpenseLocker()
		unlockA, err := l.Lock(ctx, uuid.New())
		require.NoError(t, err)
		defer unlockA()

		cctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		unlockB, err := l.Lock(cctx, uuid.New())
		require.NoError(t, err)
		unlockB()
	})

	t.Run("waiter gives up when context ends", func(t *testing.T) {
		l := NewLocalExpenseLocker()
		id := uuid.New()
		unlock, err := l.Lock(ctx, id)
		require.NoError(t, err)

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err = l.Lock(cctx, id)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		unlock()
		assert.Equal(t, 0, l.held())
	})
}
