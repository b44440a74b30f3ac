package input

import (
	"context"
	"time"
)

// Standard-mapping button indices
var (
	StartButtons = []int{9, 3}       // Start, Y
	BrakeButtons = []int{0, 1, 2, 7} // A, B, X, right trigger
)

// PadState is one connected pad at poll time
type PadState struct {
	Index   int
	Buttons []bool
}

// PadSource reports currently connected pads
type PadSource interface {
	Pads() []PadState
}

// GamepadPoller turns button presses into intents on their rising edge
// Holding a button fires once; a pad that disappears forgets its history
type GamepadPoller struct {
	source   PadSource
	interval time.Duration
	emit     func(Intent)
	prev     map[int][]bool
}

// NewGamepadPoller creates a poller that calls emit for each detected intent
func NewGamepadPoller(source PadSource, interval time.Duration, emit func(Intent)) *GamepadPoller {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &GamepadPoller{
		source:   source,
		interval: interval,
		emit:     emit,
		prev:     make(map[int][]bool),
	}
}

// Poll reads the source once; not safe for concurrent use with Run
func (g *GamepadPoller) Poll() {
	pads := g.source.Pads()
	seen := make(map[int]bool, len(pads))

	for _, pad := range pads {
		seen[pad.Index] = true
		prev := g.prev[pad.Index]

		// Start wins over a brake pressed in the same poll
		switch {
		case risingAny(pad.Buttons, prev, StartButtons):
			g.emit(IntentStart)
		case risingAny(pad.Buttons, prev, BrakeButtons):
			g.emit(IntentBrake)
		}

		g.prev[pad.Index] = append(prev[:0], pad.Buttons...)
	}

	for idx := range g.prev {
		if !seen[idx] {
			delete(g.prev, idx)
		}
	}
}

// Run polls until ctx is done
func (g *GamepadPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Poll()
		}
	}
}

func risingAny(now, prev []bool, indices []int) bool {
	for _, i := range indices {
		if pressed(now, i) && !pressed(prev, i) {
			return true
		}
	}
	return false
}

func pressed(buttons []bool, i int) bool {
	return i < len(buttons) && buttons[i]
}
