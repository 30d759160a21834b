// Package clh implements the Craig, Landin and Hagersten queue lock.
// Unlike MCS, a CLH waiter spins on its predecessor's node rather than
// its own: the lock's tail pointer always names the most recently
// enqueued node, and a newly arrived waiter records whoever it displaced
// from the tail as its predecessor. The lock owns one permanent dummy
// node that starts the chain.
//
// Node ownership rotates: a Handle is a per-goroutine object that, after
// Unlock, no longer owns the node it enqueued with — it instead owns the
// (now-released) node that used to belong to its predecessor, and reuses
// that node on its next Lock call. This is the standard CLH discipline
// for a garbage-collected implementation with no free list.
package clh

import (
	"github.com/pkg/errors"

	"github.com/nbtaylor/spinlocks/atomics"
)

// Node is a single slot in the CLH chain. Callers never touch a Node
// directly; see Handle.
type Node struct {
	locked atomics.Word32
}

// Lock is a CLH queue lock.
type Lock struct {
	tail atomics.WordPtr[Node]
}

// NewLock allocates the lock's dummy node and returns a ready-to-use
// lock. Allocation is the one fallible operation anywhere in this
// module's lock surface; every other constructor is infallible. Go's
// allocator panics rather than returning an error on exhaustion, so the
// error return exists for the contract's sake and for any future
// caller-supplied allocator.
func NewLock() (*Lock, error) {
	dummy, err := allocDummy()
	if err != nil {
		return nil, errors.Wrap(err, "clh: allocating dummy node")
	}
	l := &Lock{}
	l.tail.Store(dummy)
	return l, nil
}

func allocDummy() (*Node, error) {
	return &Node{}, nil
}

// Handle is a per-goroutine CLH participant: the node it currently owns
// and will enqueue on its next Lock call. Create one Handle per
// goroutine per Lock and reuse it across acquisitions; do not share a
// Handle between goroutines.
type Handle struct {
	node *Node
	pred *Node
}

// NewHandle returns a Handle ready for its first Lock call.
func NewHandle() *Handle { return &Handle{node: &Node{}} }

// Lock blocks until h is granted the lock.
func (l *Lock) Lock(h *Handle) {
	h.node.locked.Store(1)
	pred := l.tail.Xchg(h.node)
	h.pred = pred

	spins := 0
	for pred.locked.LoadAcquire() != 0 {
		atomics.Pause(spins)
		spins++
	}
}

// Unlock releases the lock held via h. After Unlock returns, h owns the
// node formerly belonging to its predecessor and will enqueue that node
// on its next Lock call.
func (l *Lock) Unlock(h *Handle) {
	h.node.locked.StoreRelease(0)
	h.node = h.pred
	h.pred = nil
}
