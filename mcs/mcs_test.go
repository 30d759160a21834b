package mcs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestCounter(t *testing.T) {
	l := NewLock()
	const workers = 8
	const perWorker = 100_000

	var counter uint32
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			var node QNode // one node per goroutine, reused across iterations
			for j := 0; j < perWorker; j++ {
				l.Lock(&node)
				counter++
				l.Unlock(&node)
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, uint32(workers*perWorker), counter)
}

func TestTryLock(t *testing.T) {
	l := NewLock()
	var a, b QNode

	assert.True(t, l.TryLock(&a))
	assert.False(t, l.TryLock(&b))
	l.Unlock(&a)
	assert.True(t, l.TryLock(&b))
}

// TestFIFO reserves tail positions for three nodes in a fixed arrival
// order while the first holds the critical section open, then checks
// that the other two are admitted in that same order, per spec.md §8's
// FIFO property for queueing locks.
func TestFIFO(t *testing.T) {
	l := NewLock()

	var mu sync.Mutex
	var entryOrder []int

	var first QNode
	l.Lock(&first) // occupy the lock so every other node must queue

	var doneWG sync.WaitGroup
	doneWG.Add(2)

	go func() {
		var node QNode
		l.Lock(&node) // links onto the tail behind "first"
		mu.Lock()
		entryOrder = append(entryOrder, 1)
		mu.Unlock()
		l.Unlock(&node)
		doneWG.Done()
	}()

	// Give the first goroutine time to link onto the tail before the
	// second goroutine arrives and links in behind it.
	time.Sleep(10 * time.Millisecond)

	go func() {
		var node QNode
		l.Lock(&node) // links onto the tail behind the first goroutine's node
		mu.Lock()
		entryOrder = append(entryOrder, 2)
		mu.Unlock()
		l.Unlock(&node)
		doneWG.Done()
	}()

	time.Sleep(10 * time.Millisecond)
	l.Unlock(&first) // admits whichever goroutine linked in next
	doneWG.Wait()

	assert.Equal(t, []int{1, 2}, entryOrder)
}
