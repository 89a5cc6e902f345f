package geomap

import (
	"time"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// State is the lifecycle phase of a mount task.
type State int

const (
	StatePolling State = iota
	StateResolving
	StateMounting
	StateMounted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateResolving:
		return "resolving"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateMounted || s == StateFailed
}

// Task describes one map occurrence waiting to be mounted.
type Task struct {
	ContainerID string
	// Label is the address handed to the geocoder and shown in the popup.
	Label string
	// Point holds explicit coordinates; nil means Label must be geocoded.
	Point *interfaces.GeoPoint
	// Zoom overrides the configured zoom when positive.
	Zoom     int
	Document string
}

// Outcome is the terminal result of a task.
type Outcome struct {
	ContainerID string
	Label       string
	State       State
	// FailedIn is the phase the task was in when it failed.
	FailedIn State
	Point    interfaces.GeoPoint
	Err      error
	Elapsed  time.Duration
}

// Scheduler accepts tasks produced while rewriting a document.
type Scheduler interface {
	Schedule(task Task)
}
