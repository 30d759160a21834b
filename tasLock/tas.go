// Package tasLock implements the two simplest spin locks: test-and-set
// (TAS) and test-and-test-and-set (TATAS). Both are single atomic word,
// neither is fair, and neither should be used where contention is
// expected to be sustained — see the ticket, anderson, mcs and clh
// packages for FIFO-ordered alternatives.
package tasLock

import "github.com/nbtaylor/spinlocks/atomics"

// TAS is a test-and-set spinlock: a single word, 0 when free, 1 when
// held. Lock repeatedly exchanges 1 into the word until it observes the
// word was 0.
type TAS struct {
	locked atomics.Word32
}

// NewTAS returns a TAS spinlock in the unlocked state.
func NewTAS() *TAS { return &TAS{} }

// Lock blocks until the lock is acquired.
func (t *TAS) Lock() {
	spins := 0
	for t.locked.Xchg(1) != 0 {
		atomics.Pause(spins)
		spins++
	}
}

// TryLock attempts to acquire the lock without blocking. It returns true
// iff the lock was free and is now held by the caller.
func (t *TAS) TryLock() bool {
	return t.locked.Xchg(1) == 0
}

// Unlock releases the lock. The caller must hold it.
func (t *TAS) Unlock() {
	t.locked.StoreRelease(0)
}

// TATAS is a test-and-test-and-set spinlock. It behaves identically to
// TAS but reads the word with a relaxed load before attempting the
// exchange, so a spinning waiter only generates cache-coherence traffic
// (an exclusive line request) when the lock actually looks free, instead
// of on every iteration.
type TATAS struct {
	locked atomics.Word32
}

// NewTATAS returns a TATAS spinlock in the unlocked state.
func NewTATAS() *TATAS { return &TATAS{} }

// Lock blocks until the lock is acquired.
func (t *TATAS) Lock() {
	spins := 0
	for {
		if t.locked.Load() == 0 && t.locked.Xchg(1) == 0 {
			return
		}
		atomics.Pause(spins)
		spins++
	}
}

// TryLock attempts to acquire the lock without blocking.
func (t *TATAS) TryLock() bool {
	if t.locked.Load() != 0 {
		return false
	}
	return t.locked.Xchg(1) == 0
}

// Unlock releases the lock. The caller must hold it.
func (t *TATAS) Unlock() {
	t.locked.StoreRelease(0)
}
