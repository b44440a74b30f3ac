package pedestrian

import "math"

// Pose holds the cosmetic running animation parameters
// The zero value is the neutral standing pose
type Pose struct {
	Bob      float64 `json:"bob"`      // vertical hop, metres
	BodyLean float64 `json:"bodyLean"` // degrees
	ArmSwing float64 `json:"armSwing"` // degrees
	LegSwing float64 `json:"legSwing"` // degrees
}

// Limbs are per-limb pitch rotations in degrees
type Limbs struct {
	Body     float64 `json:"body"`
	LeftArm  float64 `json:"leftArm"`
	RightArm float64 `json:"rightArm"`
	LeftLeg  float64 `json:"leftLeg"`
	RightLeg float64 `json:"rightLeg"`
}

// PoseAt returns the running pose elapsed seconds into a crossing
func PoseAt(elapsed float64) Pose {
	phase := math.Sin(elapsed * CycleRate * 2 * math.Pi)
	return Pose{
		Bob:      math.Abs(phase) * bobAmplitude,
		BodyLean: phase * leanAmplitude,
		ArmSwing: phase * armAmplitude,
		LegSwing: phase * legAmplitude,
	}
}

// Limbs expands the pose into opposing arm and leg swings
func (p Pose) Limbs() Limbs {
	return Limbs{
		Body:     p.BodyLean,
		LeftArm:  -p.ArmSwing,
		RightArm: p.ArmSwing,
		LeftLeg:  p.LegSwing,
		RightLeg: -p.LegSwing,
	}
}

// IsNeutral reports the standing pose
func (p Pose) IsNeutral() bool {
	return p == Pose{}
}
