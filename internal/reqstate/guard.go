package reqstate

import "sync"

// State is the explicit lifecycle of one user-triggered request. It replaces
// ad-hoc in-flight booleans so duplicate triggers are decided by data, not by
// render timing.
type State int

const (
	Idle State = iota
	InFlight
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in_flight"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Guard tracks request state per action key (e.g. "approve:12:October 2025").
// A duplicate trigger while the key is in flight is a no-op.
type Guard struct {
	mu     sync.Mutex
	states map[string]State
}

func NewGuard() *Guard {
	return &Guard{states: make(map[string]State)}
}

// TryStart marks the key in flight and returns true, or returns false when a
// request for the key is already outstanding. Done and Failed keys may start
// again; retry is always user-triggered.
func (g *Guard) TryStart(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.states[key] == InFlight {
		return false
	}
	g.states[key] = InFlight
	return true
}

// Finish records the outcome of the in-flight request for the key.
func (g *Guard) Finish(key string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.states[key] = Failed
		return
	}
	g.states[key] = Done
}

// State reports the key's current state.
func (g *Guard) State(key string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[key]
}
