// Package anderson implements the Anderson array-based queue lock: each
// waiter is assigned a slot in a fixed-size flag array and spins on its
// own slot, never on shared lock state, which keeps coherence traffic
// local to one cache line per waiter. The bound on concurrency (N) is
// fixed at construction and exceeding it is the caller's contract to
// prevent, per the package's Anderson bound invariant.
package anderson

import (
	"github.com/nbtaylor/spinlocks/atomics"
	"github.com/nbtaylor/spinlocks/internal/cpu"
)

// slot pads a single flag word out to a full cache line so that no two
// waiters' slots share a line; without this, every lock handoff would
// bounce the cache line between every waiter's core.
type slot struct {
	flag atomics.Word32
	_    [cpu.CacheLineSize - 4]byte
}

// Lock is an Anderson array lock bounded to N concurrent callers.
type Lock struct {
	next    atomics.Word32
	serving atomics.Word32
	flags   []slot
	n       uint32
}

// NewLock returns an Anderson lock with n slots. n must be at least 1;
// it is not required to be a power of two. A caller-supplied n < 1 is a
// precondition violation, not a diagnosed error, consistent with every
// other lock in this module. The caller is responsible for sizing n to
// the maximum number of callers that may be inside Lock/between Lock and
// Unlock concurrently; exceeding it breaks mutual exclusion.
func NewLock(n int) *Lock {
	l := &Lock{
		flags: make([]slot, n),
		n:     uint32(n),
	}
	l.flags[0].flag.Store(1)
	return l
}

// Lock blocks until the caller is granted its slot.
func (l *Lock) Lock() uint32 {
	// next is kept in [0, n) so the slot sequence stays contiguous when
	// n is not a power of two and the counter would otherwise wrap.
	var mySlot uint32
	for {
		cur := l.next.Load()
		if _, ok := l.next.CompareAndSwap(cur, (cur+1)%l.n); ok {
			mySlot = cur
			break
		}
	}
	spins := 0
	for l.flags[mySlot].flag.LoadAcquire() == 0 {
		atomics.Pause(spins)
		spins++
	}
	l.flags[mySlot].flag.Store(0)
	return mySlot
}

// Unlock releases the lock previously returned by Lock, admitting the
// waiter at the next slot.
func (l *Lock) Unlock(mySlot uint32) {
	next := (mySlot + 1) % l.n
	l.serving.Store(next)
	l.flags[next].flag.StoreRelease(1)
}
