package mongo

import "sync/atomic"

// State is the lifecycle state of one handle.
type State int32

const (
	Unconnected State = iota
	Connecting
	Connected
	// Disconnected means the handle was connected but its servers stopped answering heartbeats.
	Disconnected
	Closed
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Closed:
		return "closed"
	}
	return "unknown"
}

type atomicState struct {
	v atomic.Int32
}

func (a *atomicState) load() State {
	return State(a.v.Load())
}

func (a *atomicState) store(s State) {
	a.v.Store(int32(s))
}

// swap moves from old to s, reporting false if the state was not old.
func (a *atomicState) swap(old, s State) bool {
	return a.v.CompareAndSwap(int32(old), int32(s))
}
