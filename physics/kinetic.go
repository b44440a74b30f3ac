// Package physics holds the braking model and longitudinal geometry of a run
// All functions are pure; speeds are never negative by caller contract
package physics

import "math"

const (
	// Gravity is standard gravitational acceleration in m/s²
	Gravity = 9.8
	// Friction is the tyre/asphalt friction coefficient
	Friction = 0.7
	// DefaultReactionTime is the average driver reaction time in seconds,
	// used for reporting when no brake input was captured
	DefaultReactionTime = 0.7

	kmhPerMs = 3.6
)

// Braking is the stopping distance breakdown for a speed and reaction time
type Braking struct {
	ReactionDistance float64 `json:"reactionDistance"` // metres covered before the brake bites
	StoppingDistance float64 `json:"stoppingDistance"` // metres from brake to standstill
	Total            float64 `json:"totalDistance"`
	SpeedMs          float64 `json:"speedMs"`
	SpeedKmh         float64 `json:"speedKmh"`
	ReactionTime     float64 `json:"reactionTime"`
}

// KmhToMs converts km/h to m/s
func KmhToMs(kmh float64) float64 {
	return kmh / kmhPerMs
}

// MsToKmh converts m/s to km/h
func MsToKmh(ms float64) float64 {
	return ms * kmhPerMs
}

// Deceleration returns the constant braking deceleration μ·g in m/s²
func Deceleration() float64 {
	return Friction * Gravity
}

// Decelerate applies dt seconds of full braking to speedMs, never going below zero
func Decelerate(speedMs, dt float64) float64 {
	return math.Max(0, speedMs-Deceleration()*dt)
}

// StoppingDistance returns v²/(2μg) for a speed in m/s
func StoppingDistance(speedMs float64) float64 {
	return (speedMs * speedMs) / (2 * Deceleration())
}

// BrakingDistance computes reaction, stopping and total distance for speedKmh
// and a reaction time in seconds
func BrakingDistance(speedKmh, reactionTime float64) Braking {
	speedMs := KmhToMs(speedKmh)
	reaction := speedMs * reactionTime
	stopping := StoppingDistance(speedMs)

	return Braking{
		ReactionDistance: reaction,
		StoppingDistance: stopping,
		Total:            reaction + stopping,
		SpeedMs:          speedMs,
		SpeedKmh:         speedKmh,
		ReactionTime:     reactionTime,
	}
}
