package collector

import "sync"

// gate admits producers until it is shut. shut returns a channel that is
// closed once every admitted producer has left, so the stop marker can only
// be queued behind items whose Enqueue returned nil.
type gate struct {
	mu       sync.Mutex
	shut     bool
	inflight int
	idle     chan struct{}
}

// enter admits a producer. It fails once the gate is shut.
func (g *gate) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shut {
		return false
	}
	g.inflight++
	return true
}

func (g *gate) leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inflight--
	if g.inflight == 0 && g.idle != nil {
		close(g.idle)
		g.idle = nil
	}
}

// close shuts the gate and returns a channel closed when no producer is in
// flight. It reports false if the gate was already shut.
func (g *gate) close() (<-chan struct{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shut {
		return nil, false
	}
	g.shut = true

	idle := make(chan struct{})
	if g.inflight == 0 {
		close(idle)
	} else {
		g.idle = idle
	}
	return idle, true
}

// reopen undoes an interrupted close.
func (g *gate) reopen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shut = false
	g.idle = nil
}
