package physics

import "math"

// Vehicle and pedestrian footprint, metres
const (
	VehicleFrontLength = 2.25 // vehicle centre to front bumper
	VehicleHalfWidth   = 1.0
	ObstacleHalfDepth  = 0.1
	ObstacleHalfWidth  = 0.2

	// CollisionHalfWidths is the lateral overlap threshold
	CollisionHalfWidths = VehicleHalfWidth + ObstacleHalfWidth
)

// FrontClearance is the signed gap between the front bumper and the near edge of the obstacle
// The vehicle travels towards negative Z; a value <= 0 means overlap
func FrontClearance(vehicleZ, obstacleZ float64) float64 {
	bumperZ := vehicleZ - VehicleFrontLength
	nearEdgeZ := obstacleZ + ObstacleHalfDepth
	return bumperZ - nearEdgeZ
}

// LateralDistance is the absolute X offset between the vehicle axis and the obstacle
func LateralDistance(vehicleX, obstacleX float64) float64 {
	return math.Abs(vehicleX - obstacleX)
}

// Collides reports lateral overlap with zero or negative front clearance
func Collides(lateral, clearance float64) bool {
	return lateral < CollisionHalfWidths && clearance <= 0
}

// Passed reports the vehicle has moved beyond obstacleZ by more than margin metres
func Passed(vehicleZ, obstacleZ, margin float64) bool {
	return vehicleZ < obstacleZ-margin
}
