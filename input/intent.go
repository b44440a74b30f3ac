// Package input turns keyboard, gamepad and remote messages into abstract intents
// Adapters only enqueue; the simulation applies intents between ticks
package input

import (
	"strings"

	"github.com/lixenwraith/brakezone/engine"
)

// Intent is a device-independent player action
type Intent uint8

const (
	IntentNone Intent = iota
	IntentStart
	IntentBrake
	IntentRestart
	IntentQuit
	IntentToggleMute
)

var intentNames = map[Intent]string{
	IntentNone:       "none",
	IntentStart:      "start",
	IntentBrake:      "brake",
	IntentRestart:    "restart",
	IntentQuit:       "quit",
	IntentToggleMute: "mute",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseIntent resolves an intent by name, as used in the [keys] config section
func ParseIntent(name string) (Intent, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for intent, n := range intentNames {
		if n == name {
			return intent, true
		}
	}
	return IntentNone, false
}

// Controller is the simulation side of an adapter
type Controller interface {
	Push(t engine.EventType)
	Phase() engine.Phase
}

// Apply routes a simulation intent to c
// Start on a finished run restarts to idle, so the next start begins a fresh run
// Returns false for intents the simulation does not handle
func Apply(c Controller, intent Intent) bool {
	switch intent {
	case IntentStart:
		switch c.Phase() {
		case engine.PhaseIdle:
			c.Push(engine.EventStart)
		case engine.PhaseEnded:
			c.Push(engine.EventRestart)
		}
		return true
	case IntentBrake:
		c.Push(engine.EventBrake)
		return true
	case IntentRestart:
		c.Push(engine.EventRestart)
		return true
	default:
		return false
	}
}
