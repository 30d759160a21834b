// Package pfrwlock implements a phase-fair reader/writer spin lock: the
// lock alternates between a reader phase, which drains to completion
// before any writer is admitted, and a writer phase of exactly one
// writer, which on release reopens the reader phase. Unlike rwlock's
// writer-preferring lock, neither readers nor writers starve under a
// steady mix.
package pfrwlock

import "github.com/nbtaylor/spinlocks/atomics"

// RWLock is a phase-fair reader/writer lock.
type RWLock struct {
	readers      atomics.Word32
	writers      atomics.Word32
	writerActive atomics.Word32
	readPhase    atomics.Word32
}

// New returns a phase-fair RWLock with the reader phase open.
func New() *RWLock {
	l := &RWLock{}
	l.readPhase.Store(1)
	return l
}

// RLock acquires the lock for shared access, waiting for the reader
// phase if a writer currently holds or is taking the lock.
//
// As with rwlock.RWLock, the increment is optimistic and re-verified:
// a writer may become active between the phase check and the CAS, so a
// reader that observes writerActive set after incrementing rolls its
// increment back and retries.
func (l *RWLock) RLock() {
	spins := 0
	for {
		for l.writerActive.Load() != 0 || l.readPhase.Load() == 0 {
			atomics.Pause(spins)
			spins++
		}

		cur := l.readers.Load()
		if _, ok := l.readers.CompareAndSwap(cur, cur+1); !ok {
			continue
		}

		if l.writerActive.Load() != 0 {
			l.readers.FetchSub(1)
			continue
		}
		return
	}
}

// RUnlock releases a shared hold.
func (l *RWLock) RUnlock() {
	l.readers.FetchSub(1)
}

// Lock acquires the lock for exclusive access. It announces intent
// immediately (closing the reader phase to new readers), waits for
// readers already admitted to drain, then takes exclusive ownership and
// waits once more for any reader admitted before writerActive was set.
func (l *RWLock) Lock() {
	l.writers.FetchAdd(1)
	l.readPhase.Store(0)

	spins := 0
	for l.readers.Load() != 0 {
		atomics.Pause(spins)
		spins++
	}

	for l.writerActive.Xchg(1) != 0 {
		atomics.Pause(spins)
		spins++
	}
	for l.readers.Load() != 0 {
		atomics.Pause(spins)
		spins++
	}
	l.writers.FetchSub(1)
}

// Unlock releases the exclusive hold and reopens the reader phase.
func (l *RWLock) Unlock() {
	l.writerActive.StoreRelease(0)
	l.readPhase.Store(1)
}
