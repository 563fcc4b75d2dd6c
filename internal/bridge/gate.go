package bridge

import "sync"

// Gate holds actions until the surface is ready.
// NotReady -> Ready drains the pending actions once, in order; Reset returns to NotReady.
type Gate struct {
	mu      sync.Mutex
	ready   bool
	pending []func()
}

// NewGate creates a gate in NotReady
func NewGate() *Gate {
	return &Gate{}
}

// Defer runs action now when ready, otherwise queues it
func (g *Gate) Defer(action func()) {
	g.mu.Lock()
	if !g.ready {
		g.pending = append(g.pending, action)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	action()
}

// Open moves the gate to Ready and runs the queued actions.
// Reports false if it was already open.
func (g *Gate) Open() bool {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		return false
	}
	g.ready = true
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, action := range pending {
		action()
	}
	return true
}

// Reset moves the gate back to NotReady
func (g *Gate) Reset() {
	g.mu.Lock()
	g.ready = false
	g.mu.Unlock()
}

// Ready reports whether the gate is open
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Pending returns the number of queued actions
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
