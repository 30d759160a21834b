// Package rwlock implements a writer-preferring reader/writer spin lock.
// Once a writer has announced intent, no new reader is admitted, which
// bounds writer wait time at the cost of reader fairness: readers can
// starve under continuous writer arrivals. See pfrwlock for a
// phase-fair alternative that bounds both.
package rwlock

import "github.com/nbtaylor/spinlocks/atomics"

// RWLock is a writer-preferring reader/writer lock.
type RWLock struct {
	readers atomics.Word32
	writer  atomics.Word32
}

// New returns an RWLock in the unlocked state.
func New() *RWLock { return &RWLock{} }

// RLock acquires the lock for shared (reader) access.
//
// The acquire is optimistic: the writer flag is checked, the reader
// count is incremented, and the writer flag is checked again. A writer
// may slip in between the two checks, so a reader that finds the flag
// set after incrementing must back its increment out and retry — without
// that rollback a writer could begin while this reader believes it holds
// a shared lock.
func (r *RWLock) RLock() {
	spins := 0
	for {
		for r.writer.Load() != 0 {
			atomics.Pause(spins)
			spins++
		}

		cur := r.readers.Load()
		if _, ok := r.readers.CompareAndSwap(cur, cur+1); !ok {
			continue
		}

		if r.writer.Load() != 0 {
			r.readers.FetchSub(1)
			continue
		}
		return
	}
}

// TryRLock attempts to acquire the lock for shared access without
// blocking, unwinding its own reader-count increment on failure.
func (r *RWLock) TryRLock() bool {
	if r.writer.Load() != 0 {
		return false
	}
	cur := r.readers.Load()
	if _, ok := r.readers.CompareAndSwap(cur, cur+1); !ok {
		return false
	}
	if r.writer.Load() != 0 {
		r.readers.FetchSub(1)
		return false
	}
	return true
}

// RUnlock releases a shared (reader) hold.
func (r *RWLock) RUnlock() {
	r.readers.FetchSub(1)
}

// Lock acquires the lock for exclusive (writer) access. Once acquired,
// no new reader can enter until Unlock.
func (r *RWLock) Lock() {
	spins := 0
	for r.writer.Xchg(1) != 0 {
		atomics.Pause(spins)
		spins++
	}
	spins = 0
	for r.readers.Load() != 0 {
		atomics.Pause(spins)
		spins++
	}
}

// TryLock attempts to acquire the lock for exclusive access without
// blocking.
func (r *RWLock) TryLock() bool {
	if r.writer.Xchg(1) != 0 {
		return false
	}
	if r.readers.Load() != 0 {
		r.writer.StoreRelease(0)
		return false
	}
	return true
}

// Unlock releases an exclusive (writer) hold.
func (r *RWLock) Unlock() {
	r.writer.StoreRelease(0)
}
