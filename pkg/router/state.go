package router

import (
	"fmt"
)

// State is the interaction state of the router.
type State uint8

const (
	StateIdle State = iota
	StateDrawing
	StateCommitting
)

var stateNames = map[State]string{
	StateIdle:       "Idle",
	StateDrawing:    "Drawing",
	StateCommitting: "Committing",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", s)
}

// Event is a pointer or keyboard input that drives the router.
type Event uint8

const (
	EventPress Event = iota
	EventMove
	EventRelease
	EventCancel
	EventCommitted
)

var eventNames = map[Event]string{
	EventPress:     "Press",
	EventMove:      "Move",
	EventRelease:   "Release",
	EventCancel:    "Cancel",
	EventCommitted: "Committed",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(%d)", e)
}

// transitions lists every legal (state, event) pair. Anything else is
// rejected by NextState.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventPress:  StateDrawing,
		EventMove:   StateIdle,
		EventCancel: StateIdle,
	},
	StateDrawing: {
		EventMove:    StateDrawing,
		EventRelease: StateCommitting,
		EventCancel:  StateIdle,
	},
	StateCommitting: {
		EventCommitted: StateIdle,
		EventCancel:    StateIdle,
	},
}

// NextState returns the state reached from current on ev.
func NextState(current State, ev Event) (State, error) {
	next, ok := transitions[current][ev]
	if !ok {
		return current, fmt.Errorf("router: %s not allowed in state %s", ev, current)
	}
	return next, nil
}
