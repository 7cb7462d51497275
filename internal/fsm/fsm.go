// Package fsm models the lifecycle of one helper invocation.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle     State = "idle"
	StateSpawning State = "spawning"
	StateRunning  State = "running"
	StateExited   State = "exited"
	StateFailed   State = "failed"
)

const (
	EventSpawn   Event = "spawn"
	EventStarted Event = "started"
	EventExit    Event = "exit"
	EventFail    Event = "fail"
)

// Terminal reports whether no further transitions are accepted from s.
func (s State) Terminal() bool {
	return s == StateExited || s == StateFailed
}

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventSpawn:
			return StateSpawning, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSpawning:
		switch event {
		case EventStarted:
			return StateRunning, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventExit:
			return StateExited, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateExited, StateFailed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
