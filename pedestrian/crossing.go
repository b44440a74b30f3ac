// Package pedestrian models a figure running across the road in front of the vehicle
// Everything is a pure function of elapsed time so a crossing can be replayed exactly
package pedestrian

import "math"

const (
	// RunSpeed is a child's running speed in m/s
	RunSpeed = 3.5
	// CycleRate is running strides per second
	CycleRate = 2.5

	bobAmplitude  = 0.08 // metres
	leanAmplitude = 3.0  // degrees
	armAmplitude  = 60.0 // degrees
	legAmplitude  = 50.0 // degrees
)

// Crossing describes one lateral run from StartX to TargetX at constant Speed
type Crossing struct {
	StartX  float64
	TargetX float64
	Speed   float64
}

// State is the crossing evaluated at one instant
type State struct {
	X        float64
	Moved    float64
	Progress float64 // 0..1
	Done     bool
	Pose     Pose
}

// NewCrossing creates a crossing at RunSpeed
func NewCrossing(startX, targetX float64) Crossing {
	return Crossing{StartX: startX, TargetX: targetX, Speed: RunSpeed}
}

// Distance is the total lateral distance to cover
func (c Crossing) Distance() float64 {
	return math.Abs(c.TargetX - c.StartX)
}

// At evaluates the crossing elapsed seconds after the run began
func (c Crossing) At(elapsed float64) State {
	if elapsed < 0 {
		elapsed = 0
	}

	total := c.Distance()
	if total == 0 {
		return State{X: c.TargetX, Progress: 1, Done: true}
	}

	moved := math.Min(c.Speed*elapsed, total)
	progress := moved / total

	direction := 1.0
	if c.TargetX < c.StartX {
		direction = -1
	}

	s := State{
		X:        c.StartX + moved*direction,
		Moved:    moved,
		Progress: progress,
		Done:     progress >= 1,
	}
	if !s.Done {
		s.Pose = PoseAt(elapsed)
	}
	return s
}

// Duration is the time in seconds needed to complete the crossing
func (c Crossing) Duration() float64 {
	if c.Speed <= 0 {
		return math.Inf(1)
	}
	return c.Distance() / c.Speed
}
