// Package render draws a top-down view of the run on a tcell screen
package render

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/pedestrian"
)

// brakeFlash is how long the brake banner stays bright after braking
const brakeFlash = 600 * time.Millisecond

type actor struct {
	visible bool
	x, z    float64
	pose    pedestrian.Limbs
	hit     bool
}

// Terminal keeps the latest presentation state and paints it on Draw
// Presenter and SceneSink calls only record state
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	now    func() time.Time

	hud        engine.HUD
	brakeAt    time.Time
	outcome    *engine.RunOutcome
	board      []leaderboard.Record
	pedestrian actor
	scenery    []engine.SceneCommand
	cameraZ    float64
	pitch      float64
	muted      bool
	started    bool
}

// NewTerminal wraps an initialized screen
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, now: time.Now}
}

// SetLeaderboard replaces the top list shown on the idle and result screens
func (t *Terminal) SetLeaderboard(records []leaderboard.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.board = append([]leaderboard.Record(nil), records...)
}

func (t *Terminal) SetMuted(muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = muted
}

func (t *Terminal) UpdateHUD(hud engine.HUD) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hud = hud
	t.started = true
}

func (t *Terminal) ShowBrakeIndicator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.brakeAt = t.now()
	t.hud.Braking = true
}

func (t *Terminal) ShowResult(o engine.RunOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcome = &o
}

func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hud = engine.HUD{}
	t.brakeAt = time.Time{}
	t.outcome = nil
	t.pedestrian = actor{}
	t.cameraZ = 0
	t.pitch = 0
	t.started = false
}

// Apply implements engine.SceneSink
func (t *Terminal) Apply(cmd engine.SceneCommand) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch cmd.Kind {
	case engine.SceneSpawnActor:
		t.pedestrian = actor{visible: true, x: cmd.X, z: cmd.Z}
	case engine.SceneMoveActor:
		t.pedestrian.x, t.pedestrian.z = cmd.X, cmd.Z
	case engine.ScenePoseActor:
		t.pedestrian.pose = cmd.Pose
	case engine.SceneRemoveActor:
		t.pedestrian = actor{}
	case engine.SceneCollision:
		t.pedestrian.hit = true
		t.pedestrian.x, t.pedestrian.z = cmd.X, cmd.Z
	case engine.ScenePlaceScenery:
		t.scenery = append(t.scenery, cmd)
		t.started = true
	case engine.SceneClearScenery:
		t.scenery = t.scenery[:0]
	case engine.SceneMoveCamera:
		t.cameraZ = cmd.Z
	case engine.SceneResetCamera:
		t.cameraZ = 0
		t.pitch = 0
	case engine.SceneCameraPitch:
		t.pitch = cmd.Pitch
	}
	return nil
}

// HandleResize resyncs the screen after a terminal resize
func (t *Terminal) HandleResize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Sync()
}

// Draw paints the current state and shows it
func (t *Terminal) Draw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	w, h := t.screen.Size()
	if w < minWidth || h < minHeight {
		drawText(t.screen, 0, 0, styleWarn, "terminal too small")
		t.screen.Show()
		return
	}

	t.drawRoad(w, h)
	t.drawHUD(w)

	switch {
	case t.outcome != nil:
		t.drawResult(w, h)
	case !t.started:
		t.drawIdle(w, h)
	}
	t.screen.Show()
}
