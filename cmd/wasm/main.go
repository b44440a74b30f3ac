//go:build js && wasm

// Command wasm exposes the simulation to a browser page
// The page owns the frame loop and calls brakezoneAdvance with elapsed milliseconds
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"syscall/js"
	"time"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/input"
	"github.com/lixenwraith/brakezone/leaderboard"
)

// frame collects presenter and scene output between two advances
type frame struct {
	mu      sync.Mutex
	HUD     *engine.HUD           `json:"hud,omitempty"`
	Brake   bool                  `json:"brake,omitempty"`
	Cleared bool                  `json:"reset,omitempty"`
	Result  *engine.RunOutcome    `json:"result,omitempty"`
	Scene   []engine.SceneCommand `json:"scene,omitempty"`
	Phase   engine.Phase          `json:"phase"`
	Records []leaderboard.Record  `json:"leaderboard,omitempty"`
}

func (f *frame) UpdateHUD(h engine.HUD) { f.mu.Lock(); f.HUD = &h; f.mu.Unlock() }
func (f *frame) ShowBrakeIndicator()    { f.mu.Lock(); f.Brake = true; f.mu.Unlock() }
func (f *frame) Reset()                 { f.mu.Lock(); f.Cleared = true; f.mu.Unlock() }
func (f *frame) ShowResult(o engine.RunOutcome) {
	f.mu.Lock()
	f.Result = &o
	f.mu.Unlock()
}

func (f *frame) Apply(cmd engine.SceneCommand) error {
	f.mu.Lock()
	f.Scene = append(f.Scene, cmd)
	f.mu.Unlock()
	return nil
}

func (f *frame) setRecords(top []leaderboard.Record) {
	f.mu.Lock()
	f.Records = top
	f.mu.Unlock()
}

// flush encodes and clears the collected output
func (f *frame) flush(phase engine.Phase) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Phase = phase
	data, err := json.Marshal(f)
	f.HUD, f.Brake, f.Cleared, f.Result, f.Scene, f.Records = nil, false, false, nil, nil, nil
	if err != nil {
		return `{"error":"encode failed"}`
	}
	return string(data)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	clock := engine.NewMockClock(time.Now())
	out := &frame{}

	board := leaderboard.NewBoard(
		leaderboard.NewLocalStore(leaderboard.DefaultHistoryCap, "", logger),
		nil,
		leaderboard.BoardOptions{Logger: logger},
	)
	board.OnSaved = out.setRecords

	scenario := engine.NewScenario(engine.Options{
		Clock:     clock,
		Rand:      engine.NewRand(0),
		Presenter: out,
		Scene:     out,
		Results:   board,
		Logger:    logger,
	})

	intent := func(i input.Intent) js.Func {
		return js.FuncOf(func(js.Value, []js.Value) any {
			input.Apply(scenario, i)
			scenario.Dispatch()
			return out.flush(scenario.Phase())
		})
	}

	js.Global().Set("brakezoneStart", intent(input.IntentStart))
	js.Global().Set("brakezoneBrake", intent(input.IntentBrake))
	js.Global().Set("brakezoneRestart", intent(input.IntentRestart))

	js.Global().Set("brakezoneAdvance", js.FuncOf(func(_ js.Value, args []js.Value) any {
		ms := 0.0
		if len(args) > 0 {
			ms = args[0].Float()
		}
		now := clock.Advance(time.Duration(ms * float64(time.Millisecond)))
		scenario.Advance(now)
		return out.flush(scenario.Phase())
	}))

	js.Global().Set("brakezoneSetPlayer", js.FuncOf(func(_ js.Value, args []js.Value) any {
		var p engine.Player
		if len(args) > 0 {
			p.Name = args[0].String()
		}
		if len(args) > 1 {
			p.ClassName = args[1].String()
		}
		scenario.SetPlayer(p)
		return nil
	}))

	js.Global().Set("brakezoneLeaderboard", js.FuncOf(func(js.Value, []js.Value) any {
		top, _ := board.Top(context.Background(), board.Limit())
		data, _ := json.Marshal(top)
		return string(data)
	}))

	select {}
}
