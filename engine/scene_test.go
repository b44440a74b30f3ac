package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneCommandJSON(t *testing.T) {
	in := SceneCommand{Kind: SceneCollision, Actor: ActorPedestrian, X: 1.5, Y: 2, Z: -20}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"collision_sequence"`)

	var out SceneCommand
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"teleport"}`), &out))
}

func TestPhaseJSON(t *testing.T) {
	data, err := json.Marshal(Snapshot{Phase: PhaseRunning})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phase":"running"`)
}

func TestSceneFanoutReportsNotReady(t *testing.T) {
	var calls int
	ok := SceneFunc(func(SceneCommand) error { calls++; return nil })
	notReady := SceneFunc(func(SceneCommand) error { calls++; return ErrActorNotReady })

	err := SceneFanout{ok, notReady, ok}.Apply(SceneCommand{Kind: SceneSpawnActor})
	assert.True(t, errors.Is(err, ErrActorNotReady))
	assert.Equal(t, 3, calls, "every sink receives the command")

	assert.NoError(t, SceneFanout{ok}.Apply(SceneCommand{Kind: SceneMoveActor}))
}

func TestScenerySlots(t *testing.T) {
	full := scenerySlots(false)
	lite := scenerySlots(true)
	assert.Len(t, full, len(parkedCars))
	assert.Len(t, lite, (len(parkedCars)+1)/2)
	assert.Equal(t, full[0], lite[0])
	assert.Equal(t, full[2], lite[1])
}
