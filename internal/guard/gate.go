// Package guard provides the re-entrancy gate used by the generation engines.
//
// Every write an engine performs re-triggers the store subscription that
// invoked it, so a pass must never run nested inside itself. The gate is a
// non-blocking acquire: a call that arrives while a pass is in flight is
// dropped, not queued.
package guard

import "sync/atomic"

// Gate is a drop-on-contention single-flight flag. The zero value is open.
type Gate struct {
	busy atomic.Bool
}

// TryAcquire closes the gate and returns true, or returns false if it is
// already held.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release reopens the gate.
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Held reports whether the gate is currently acquired.
func (g *Gate) Held() bool {
	return g.busy.Load()
}
