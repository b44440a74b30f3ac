package engine

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/brakezone/pedestrian"
)

// ErrActorNotReady is returned by a SceneSink whose handle for an actor is not loaded yet
// The scenario re-sends the spawn on the next tick and carries on simulating
var ErrActorNotReady = errors.New("scene actor not ready")

// SceneKind identifies a rendering command
type SceneKind uint8

const (
	SceneSpawnActor SceneKind = iota + 1
	SceneMoveActor
	ScenePoseActor
	SceneRemoveActor
	SceneCollision
	ScenePlaceScenery
	SceneClearScenery
	SceneMoveCamera
	SceneResetCamera
	SceneCameraPitch
)

var sceneKindNames = [...]string{
	SceneSpawnActor:   "spawn_actor",
	SceneMoveActor:    "move_actor",
	ScenePoseActor:    "pose_actor",
	SceneRemoveActor:  "remove_actor",
	SceneCollision:    "collision_sequence",
	ScenePlaceScenery: "place_scenery",
	SceneClearScenery: "clear_scenery",
	SceneMoveCamera:   "move_camera",
	SceneResetCamera:  "reset_camera",
	SceneCameraPitch:  "camera_pitch",
}

func (k SceneKind) String() string {
	if int(k) < len(sceneKindNames) && sceneKindNames[k] != "" {
		return sceneKindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name for websocket clients
func (k SceneKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SceneKind) UnmarshalText(text []byte) error {
	for i, name := range sceneKindNames {
		if name != "" && name == string(text) {
			*k = SceneKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown scene kind %q", text)
}

// Actor names
const (
	ActorPedestrian = "pedestrian"
	ActorScenery    = "parked_car"
)

// SceneCommand is a typed instruction to whatever draws the world
// Positions are metres in world space, angles are degrees
type SceneCommand struct {
	Kind  SceneKind        `json:"kind"`
	Actor string           `json:"actor,omitempty"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
	Z     float64          `json:"z"`
	Yaw   float64          `json:"yaw,omitempty"`
	Pitch float64          `json:"pitch,omitempty"`
	Scale float64          `json:"scale,omitempty"`
	Pose  pedestrian.Limbs `json:"pose"`
}

// SceneSink receives scene commands on the simulation goroutine
// Apply must not call back into the Scenario
type SceneSink interface {
	Apply(cmd SceneCommand) error
}

// SceneFunc adapts a function to SceneSink
type SceneFunc func(cmd SceneCommand) error

func (f SceneFunc) Apply(cmd SceneCommand) error {
	return f(cmd)
}

// SceneFanout forwards every command to each sink
// The first ErrActorNotReady wins so the spawn is retried for all of them
type SceneFanout []SceneSink

func (f SceneFanout) Apply(cmd SceneCommand) error {
	var notReady error
	for _, s := range f {
		if err := s.Apply(cmd); err != nil && errors.Is(err, ErrActorNotReady) && notReady == nil {
			notReady = err
		}
	}
	return notReady
}

// parkedCar is a static scenery slot beside the road
type parkedCar struct {
	X, Z float64
}

// parkedCars line both curbs ahead of and behind the start position
var parkedCars = []parkedCar{
	{-2.2, -8}, {-2.2, -15}, {-2.2, -22},
	{-2.2, -35}, {-2.2, -50}, {-2.2, -65},
	{-2.2, -80}, {-2.2, -95}, {-2.2, -110},
	{2.2, -10}, {2.2, -18}, {2.2, -28},
	{2.2, -40}, {2.2, -55}, {2.2, -70},
	{2.2, -85}, {2.2, -100}, {2.2, -115},
	{-2.2, 30}, {2.2, 45}, {-2.2, 68}, {2.2, 92},
}

// scenerySlots returns the parked car slots, every other one in lite mode
func scenerySlots(lite bool) []parkedCar {
	if !lite {
		return parkedCars
	}
	out := make([]parkedCar, 0, (len(parkedCars)+1)/2)
	for i, c := range parkedCars {
		if i%2 == 0 {
			out = append(out, c)
		}
	}
	return out
}
