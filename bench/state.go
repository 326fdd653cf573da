package bench

import "fmt"

type State uint8

const (
	StateIdle State = iota
	StateEntriesReady
	StateCircuitReady
	StateCommitted
	StateIncluded
	StateDone
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateEntriesReady: "entries-ready",
	StateCircuitReady: "circuit-ready",
	StateCommitted:    "committed",
	StateIncluded:     "included",
	StateDone:         "done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// next is the only legal successor of s.
func (s State) next() (State, bool) {
	if s >= StateDone {
		return s, false
	}
	return s + 1, true
}
