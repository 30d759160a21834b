package ticket

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
			for j := 0; j < perWorker; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, uint32(workers*perWorker), counter)
}

func TestTryLock(t *testing.T) {
	l := NewLock()
	assert.True(t, l.TryLock())
	assert.False(t, l.TryLock())
	l.Unlock()
	assert.True(t, l.TryLock())
}

// TestFIFO reserves tickets for three goroutines in a fixed order while
// the first holds the critical section open, then checks that the other
// two are admitted in the order their tickets were issued.
func TestFIFO(t *testing.T) {
	l := NewLock()

	var mu sync.Mutex
	var entryOrder []int

	l.Lock() // ticket 0, held by the test goroutine itself

	var doneWG sync.WaitGroup
	doneWG.Add(2)

	go func() {
		l.Lock() // reserves ticket 1
		mu.Lock()
		entryOrder = append(entryOrder, 1)
		mu.Unlock()
		l.Unlock()
		doneWG.Done()
	}()

	// Give the first goroutine time to reserve ticket 1 before the second
	// goroutine arrives and reserves ticket 2.
	time.Sleep(10 * time.Millisecond)

	go func() {
		l.Lock() // reserves ticket 2
		mu.Lock()
		entryOrder = append(entryOrder, 2)
		mu.Unlock()
		l.Unlock()
		doneWG.Done()
	}()

	l.Unlock() // release ticket 0, admitting ticket 1
	doneWG.Wait()

	assert.Equal(t, []int{1, 2}, entryOrder)
}
