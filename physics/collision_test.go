package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontClearance(t *testing.T) {
	// Obstacle 8m ahead of the vehicle centre
	assert.InDelta(t, 8-2.25-0.1, FrontClearance(0, -8), 1e-12)
	assert.InDelta(t, 0, FrontClearance(-5.65, -8), 1e-12)
	assert.Less(t, FrontClearance(-6, -8), 0.0)
}

func TestCollides(t *testing.T) {
	assert.True(t, Collides(0.5, -0.1))
	assert.True(t, Collides(0, 0))
	assert.False(t, Collides(1.2, -0.1), "lateral threshold is exclusive")
	assert.False(t, Collides(0.5, 0.01))
	assert.False(t, Collides(2.2, -3))
}

func TestLateralDistance(t *testing.T) {
	assert.Equal(t, 0.8, LateralDistance(0, -0.8))
	assert.Equal(t, 2.2, LateralDistance(0, 2.2))
}

func TestPassed(t *testing.T) {
	assert.False(t, Passed(-10, -8, 3))
	assert.False(t, Passed(-11, -8, 3))
	assert.True(t, Passed(-11.01, -8, 3))
}
