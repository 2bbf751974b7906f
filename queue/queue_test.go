package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerQueue(t *testing.T) {
	t.Parallel()

	q := NewConsumerQueue[int]()

	q.Add(1)
	q.Add(2)

	require.Equal(t, []int{1, 2}, q.WaitForItems())

	go func() {
		time.Sleep(time.Millisecond * 20)
		q.Add(3)
	}()

	require.Equal(t, []int{3}, q.WaitForItems())

	q.Add(4)
	q.Stop()
	q.Add(5)

	require.Equal(t, []int{4}, q.WaitForItems())
	require.Nil(t, q.WaitForItems())
}

func TestRelay(t *testing.T) {
	t.Parallel()

	t.Run("keeps order of a single producer", func(t *testing.T) {
		var (
			lock     sync.Mutex
			consumed []int
		)

		r := NewRelay(func(item int) {
			time.Sleep(time.Millisecond)

			lock.Lock()
			consumed = append(consumed, item)
			lock.Unlock()
		})

		for i := 0; i < 50; i++ {
			r.Add(i)
		}

		r.Close()

		require.Len(t, consumed, 50)

		for i, item := range consumed {
			assert.Equal(t, i, item)
		}
	})

	t.Run("concurrent producers", func(t *testing.T) {
		var (
			counter uint64
			wg      sync.WaitGroup
		)

		r := NewRelay(func(item uint64) {
			atomic.AddUint64(&counter, item)
		})

		for i := 0; i < 6; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for j := 0; j < 100; j++ {
					r.Add(1)
				}
			}()
		}

		wg.Wait()
		r.Close()
		r.Close()

		require.Equal(t, uint64(600), atomic.LoadUint64(&counter))

		r.Add(1)
		require.Equal(t, uint64(600), atomic.LoadUint64(&counter))
	})
}
