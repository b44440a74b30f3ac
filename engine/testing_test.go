package engine

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// fixedRand always returns v
// With 0.5: spawn delay 6.5s, pedestrian from the right, target x=0
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

type recordingScene struct {
	mu       sync.Mutex
	cmds     []SceneCommand
	notReady int // spawn attempts to reject
}

func (r *recordingScene) Apply(cmd SceneCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	if cmd.Kind == SceneSpawnActor && r.notReady > 0 {
		r.notReady--
		return ErrActorNotReady
	}
	return nil
}

func (r *recordingScene) count(kind SceneKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cmds {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

type recordingPresenter struct {
	huds    int
	brakes  int
	resets  int
	results []RunOutcome
}

func (p *recordingPresenter) UpdateHUD(HUD)                 { p.huds++ }
func (p *recordingPresenter) ShowBrakeIndicator()           { p.brakes++ }
func (p *recordingPresenter) ShowResult(outcome RunOutcome) { p.results = append(p.results, outcome) }
func (p *recordingPresenter) Reset()                        { p.resets++ }

type fixture struct {
	scenario  *Scenario
	clock     *MockClock
	scene     *recordingScene
	presenter *recordingPresenter
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		clock:     NewMockClock(testEpoch),
		scene:     &recordingScene{},
		presenter: &recordingPresenter{},
	}
	if opts.Rand == nil {
		opts.Rand = fixedRand(0.5)
	}
	opts.Clock = f.clock
	if opts.Scene == nil {
		opts.Scene = f.scene
	}
	if opts.Presenter == nil {
		opts.Presenter = f.presenter
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	f.scenario = NewScenario(opts)
	return f
}

// step advances the clock by d and ticks once
func (f *fixture) step(d time.Duration) bool {
	return f.scenario.Advance(f.clock.Advance(d))
}

// tickUntil ticks every 10ms until cond holds or limit passes
func (f *fixture) tickUntil(t *testing.T, limit time.Duration, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	for elapsed := time.Duration(0); elapsed < limit; elapsed += 10 * time.Millisecond {
		f.step(10 * time.Millisecond)
		if snap := f.scenario.Snapshot(); cond(snap) {
			return snap
		}
	}
	t.Fatalf("condition not reached within %v", limit)
	return Snapshot{}
}

func spawned(s Snapshot) bool { return s.Obstacle.Spawned }
func ended(s Snapshot) bool   { return s.Phase == PhaseEnded }
