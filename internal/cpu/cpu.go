// Package cpu holds the few host-topology facts the lock packages need:
// the cache line size used for padding, and a spin-then-yield pause hint.
package cpu

import "runtime"

// CacheLineSize is the assumed width of a cache line in bytes. 64 covers
// the overwhelming majority of x86-64 and arm64 parts; the 128-byte Arm
// cores mentioned in the design notes are not specifically targeted.
const CacheLineSize = 64

// spinLimit is how many times Pause busy-spins before it falls back to a
// runtime.Gosched(). Go exposes no PAUSE instruction to user code, so a
// bounded busy-spin followed by a scheduler yield is the closest portable
// equivalent: pure busy-wait without ever yielding starves the runtime's
// goroutine scheduler on GOMAXPROCS-limited hosts.
const spinLimit = 30

// Pause hints the scheduler that the calling goroutine is in a spin-wait
// loop. Callers invoke it once per failed poll of a lock word.
func Pause(spins int) {
	if spins < spinLimit {
		for i := 0; i < 8; i++ {
			// empty spin; kept as a loop rather than a no-op so the
			// compiler doesn't elide the wait entirely
		}
		return
	}
	runtime.Gosched()
}
