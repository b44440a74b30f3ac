package engine

import (
	"time"

	"github.com/lixenwraith/brakezone/pedestrian"
	"github.com/lixenwraith/brakezone/scoring"
)

// Run parameters
const (
	InitialSpeedKmh  = 20.0 // school-zone limit
	AppearDistance   = 8.0  // metres ahead of the vehicle
	CurbX            = 2.2  // parked-car line on either side
	TargetSpread     = 0.8  // pedestrian stops within ±TargetSpread of the vehicle axis
	PassMargin       = 3.0  // metres past the obstacle before a pass is declared
	StoppedBelowKmh  = 0.1
	MinSpawnDelay    = 3 * time.Second
	SpawnDelayWindow = 7 * time.Second
)

// Phase is the lifecycle position of a run
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Trigger is the condition that ended a run
type Trigger string

const (
	TriggerDisqualified Trigger = "disqualified"
	TriggerStopped      Trigger = "stopped"
	TriggerCollision    Trigger = "collision"
	TriggerPassed       Trigger = "passed"
)

// VehicleState is the ego vehicle; it travels towards negative Z along x=0
type VehicleState struct {
	SpeedKmh float64 `json:"speedKmh"`
	Position float64 `json:"position"`
	Distance float64 `json:"distance"`
}

// ObstacleState is the crossing pedestrian
type ObstacleState struct {
	Spawned   bool                `json:"spawned"`
	Running   bool                `json:"running"`
	FromLeft  bool                `json:"fromLeft"`
	Z         float64             `json:"z"`
	X         float64             `json:"x"`
	Crossing  pedestrian.Crossing `json:"crossing"`
	AppearAt  time.Time           `json:"appearAt"`
	Clearance *float64            `json:"clearance"`
}

// BrakeEvent is what was captured at the brake moment
type BrakeEvent struct {
	Triggered        bool      `json:"triggered"`
	At               time.Time `json:"at"`
	SpeedKmh         float64   `json:"speedKmh"`
	ReactionTime     *float64  `json:"reactionTime"`
	Position         *float64  `json:"position"`
	ClearanceAtBrake *float64  `json:"clearanceAtBrake"`
}

// Player identifies who drove the run
type Player struct {
	Name      string `json:"name"`
	ClassName string `json:"className"`
}

// RunOutcome is the full record of a finished run
type RunOutcome struct {
	RunID            string         `json:"runId"`
	Player           Player         `json:"player"`
	Trigger          Trigger        `json:"trigger"`
	SpeedKmh         float64        `json:"speedKmh"`
	ReactionTime     *float64       `json:"reactionTime"`
	ReactionDistance float64        `json:"reactionDistance"`
	StoppingDistance float64        `json:"stoppingDistance"`
	TotalDistance    float64        `json:"totalDistance"`
	ClearanceAtBrake *float64       `json:"clearanceAtBrake"`
	FinalClearance   *float64       `json:"finalClearance"`
	DistanceTraveled float64        `json:"distanceTraveled"`
	Collision        bool           `json:"collision"`
	NoBrake          bool           `json:"noBrake"`
	NoBrakePenalty   bool           `json:"noBrakePenalty"`
	Disqualified     bool           `json:"disqualified"`
	Result           scoring.Result `json:"result"`
	EndedAt          time.Time      `json:"endedAt"`
}

// Snapshot is a copy of scenario state for hosts and tests
type Snapshot struct {
	Phase      Phase         `json:"phase"`
	Started    bool          `json:"started"`
	Braking    bool          `json:"braking"`
	SpawnDelay time.Duration `json:"spawnDelay"`
	Vehicle    VehicleState  `json:"vehicle"`
	Obstacle   ObstacleState `json:"obstacle"`
	Brake      BrakeEvent    `json:"brake"`
	Collision  bool          `json:"collision"`
	Outcome    *RunOutcome   `json:"outcome,omitempty"`
}

func ptr(v float64) *float64 {
	return &v
}
