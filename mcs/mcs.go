// Package mcs implements the Mellor-Crummey and Scott queue lock: each
// waiter supplies its own QNode, links onto the tail of a list via a
// single pointer-width exchange, and spins only on a field inside its
// own node. This keeps lock handoff to a single cache-line write per
// acquire/release instead of every waiter contending on one shared word.
//
// A QNode must not be reused by its owner until the Unlock call that
// consumed it has returned, and must not be shared between goroutines.
package mcs

import "github.com/nbtaylor/spinlocks/atomics"

// QNode is a caller-owned queue node. One QNode per goroutine per Lock is
// the standard discipline; a QNode must not be used concurrently by more
// than one goroutine.
type QNode struct {
	next   atomics.WordPtr[QNode]
	locked atomics.Word32
}

// Lock is an MCS queue lock. The zero value is ready to use.
type Lock struct {
	tail atomics.WordPtr[QNode]
}

// NewLock returns an MCS lock in the unlocked state.
func NewLock() *Lock { return &Lock{} }

// Lock blocks until node is granted the lock. node must remain valid and
// untouched by the caller from this call until the matching Unlock
// returns.
func (l *Lock) Lock(node *QNode) {
	node.next.Store(nil)
	node.locked.Store(0)

	prev := l.tail.Xchg(node)
	if prev == nil {
		return
	}

	node.locked.Store(1)
	prev.next.StoreRelease(node)

	spins := 0
	for node.locked.LoadAcquire() != 0 {
		atomics.Pause(spins)
		spins++
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *Lock) TryLock(node *QNode) bool {
	node.next.Store(nil)
	_, ok := l.tail.CompareAndSwap(nil, node)
	return ok
}

// Unlock releases the lock held via node.
func (l *Lock) Unlock(node *QNode) {
	succ := node.next.Load()
	if succ == nil {
		if _, ok := l.tail.CompareAndSwap(node, nil); ok {
			return
		}
		spins := 0
		for {
			succ = node.next.LoadAcquire()
			if succ != nil {
				break
			}
			atomics.Pause(spins)
			spins++
		}
	}
	succ.locked.StoreRelease(0)
}
