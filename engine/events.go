// Package engine runs a braking scenario: one vehicle, one pedestrian, one scored outcome.
//
// Input adapters never touch run state directly. They push events into an
// EventQueue from any goroutine; the Scenario drains the queue at the top of every
// Advance, before physics integration, so an input can never land mid-tick.
//
// Event Flow:
//  1. Adapter pushes: scenario.Push(engine.EventBrake)
//  2. Event stored in ring buffer with its arrival timestamp
//  3. Advance consumes pending events in FIFO order, then integrates the tick
//  4. Brake reaction time is measured from the event timestamp, not the tick time
package engine

import (
	"sync"
	"time"
)

// EventType is an abstract input intent
type EventType uint8

const (
	// EventStart begins a run; from Ended it tears the previous run down first
	EventStart EventType = iota + 1
	// EventBrake engages the brake; before the obstacle appears it disqualifies the run
	EventBrake
	// EventRestart tears the run down and returns to Idle
	EventRestart
)

func (e EventType) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventBrake:
		return "brake"
	case EventRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Event is a single queued input with its arrival time
type Event struct {
	Type      EventType
	Timestamp time.Time
}

const queueCapacity = 64

// EventQueue is a bounded ring buffer of input events
// Push is safe from many producers; Consume is for the single simulation owner
// When full the oldest events are overwritten
type EventQueue struct {
	mu     sync.Mutex
	events [queueCapacity]Event
	head   uint64 // next read
	tail   uint64 // next write
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push writes the event; a slot is visible to Consume only once fully written
func (eq *EventQueue) Push(ev Event) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	eq.events[eq.tail%queueCapacity] = ev
	eq.tail++

	// Overwrite oldest when the reader fell a full buffer behind
	if eq.tail-eq.head > queueCapacity {
		eq.head = eq.tail - queueCapacity
	}
}

// Consume returns pending events oldest first and marks them read
func (eq *EventQueue) Consume() []Event {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	available := eq.tail - eq.head
	if available == 0 {
		return nil
	}

	out := make([]Event, available)
	for i := uint64(0); i < available; i++ {
		out[i] = eq.events[(eq.head+i)%queueCapacity]
	}
	eq.head = eq.tail
	return out
}

// Len is a point-in-time count of pending events
func (eq *EventQueue) Len() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return int(eq.tail - eq.head)
}
