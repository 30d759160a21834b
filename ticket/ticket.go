// Package ticket implements a strictly FIFO-ordered mutual exclusion lock
// using a pair of counters: next_ticket, handed out to each arriving
// caller, and serving, the ticket currently allowed into the critical
// section. A caller enters once serving catches up to its own ticket.
package ticket

import "github.com/nbtaylor/spinlocks/atomics"

// Lock is a ticket lock. The zero value is ready to use; NewLock returns
// the same unlocked state.
type Lock struct {
	next    atomics.Word32
	serving atomics.Word32
}

// NewLock returns a ticket lock in the unlocked state.
func NewLock() *Lock { return &Lock{} }

// Lock blocks until the caller's ticket is being served. Entry order
// matches the order in which tickets were issued: if this call's ticket
// is reserved before another goroutine's, this call's critical section
// completes before that goroutine's begins.
func (l *Lock) Lock() {
	myTicket := l.next.FetchAdd(1)
	spins := 0
	for l.serving.LoadAcquire() != myTicket {
		atomics.Pause(spins)
		spins++
	}
}

// TryLock attempts to acquire the lock without blocking. It only
// succeeds when the lock is completely uncontended: no other caller is
// queued or being served.
func (l *Lock) TryLock() bool {
	t := l.next.Load()
	s := l.serving.Load()
	if t != s {
		return false
	}
	old, ok := l.next.CompareAndSwap(t, t+1)
	if !ok {
		return false
	}
	if l.serving.LoadAcquire() != old {
		return false
	}
	return true
}

// Unlock releases the lock, admitting the next ticket holder.
func (l *Lock) Unlock() {
	l.serving.StoreRelease(l.serving.Load() + 1)
}
