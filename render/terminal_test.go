package render

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/scoring"
)

func newTestTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return NewTerminal(screen), screen
}

// screenText returns all rows of the screen joined by newlines
func screenText(screen tcell.SimulationScreen) string {
	w, h := screen.Size()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func findRune(screen tcell.SimulationScreen, want rune) (int, int, bool) {
	w, h := screen.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r, _, _, _ := screen.GetContent(x, y); r == want {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func f64(v float64) *float64 { return &v }

func TestTerminal_IdleShowsHelpAndBoard(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	term.SetLeaderboard([]leaderboard.Record{
		{Name: "Ana", ClassName: "3-B", Score: 92, ReactionTime: f64(0.41)},
		{Name: "Bo", Score: 70},
	})
	term.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "SCHOOL ZONE 20 km/h")
	assert.Contains(t, text, "TOP DRIVERS")
	assert.Contains(t, text, "1. Ana (3-B)")
	assert.Contains(t, text, "0.41s")
	assert.Contains(t, text, "2. Bo")
}

func TestTerminal_HUDAndBrakeIndicator(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	term.UpdateHUD(engine.HUD{SpeedKmh: 18.5, Distance: 12.25, Clearance: f64(4.2)})
	term.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "Speed  18.5 km/h")
	assert.Contains(t, text, "Gap   4.2 m")
	assert.NotContains(t, text, "BRAKE")
	assert.NotContains(t, text, "SCHOOL ZONE", "idle banner hidden once running")

	term.ShowBrakeIndicator()
	term.Draw()
	assert.Contains(t, screenText(screen), "BRAKE")
}

func TestTerminal_BrakeBannerFades(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	base := time.Unix(100, 0)
	term.now = func() time.Time { return base }
	term.ShowBrakeIndicator()

	term.Draw()
	x, y, ok := findRune(screen, 'B')
	require.True(t, ok)
	_, _, bright, _ := screen.GetContent(x, y)
	assert.Equal(t, styleBrake, bright)

	term.now = func() time.Time { return base.Add(time.Second) }
	term.Draw()
	_, _, dim, _ := screen.GetContent(x, y)
	assert.Equal(t, styleWarn, dim)
}

func TestTerminal_SceneCommands(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)

	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneResetCamera}))
	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.ScenePlaceScenery, X: 2.5, Z: -6}))
	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneSpawnActor, X: 4, Z: -10}))
	term.Draw()

	_, _, ok := findRune(screen, '@')
	assert.True(t, ok, "pedestrian drawn")
	_, _, ok = findRune(screen, '▓')
	assert.True(t, ok, "parked car drawn")

	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneCollision, X: 0, Y: 2, Z: -16}))
	term.Draw()
	_, _, ok = findRune(screen, 'X')
	assert.True(t, ok, "collision marker")

	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneRemoveActor}))
	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneClearScenery}))
	term.Draw()
	_, _, ok = findRune(screen, 'X')
	assert.False(t, ok)
	_, _, ok = findRune(screen, '▓')
	assert.False(t, ok)
}

func TestTerminal_PedestrianOffScreenSkipped(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	require.NoError(t, term.Apply(engine.SceneCommand{Kind: engine.SceneSpawnActor, X: 0, Z: -500}))
	term.Draw()
	_, _, ok := findRune(screen, '@')
	assert.False(t, ok)
}

func TestTerminal_ResultPanel(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	term.ShowResult(engine.RunOutcome{
		Trigger:          engine.TriggerStopped,
		SpeedKmh:         20,
		ReactionTime:     f64(0.45),
		ReactionDistance: 2.5,
		StoppingDistance: 2.4,
		FinalClearance:   f64(3.09),
		Result: scoring.Result{
			Score:        75,
			Grade:        scoring.GradeFair,
			Message:      "Stopped in time",
			SafetyMargin: 3.09,
		},
	})
	term.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "Score 75  (fair)")
	assert.Contains(t, text, "Stopped in time")
	assert.Contains(t, text, "Reaction time    0.45 s")
	assert.Contains(t, text, "Final gap        3.09 m")
	assert.Contains(t, text, "Enter try again")

	term.Reset()
	term.Draw()
	assert.NotContains(t, screenText(screen), "Score 75")
}

func TestTerminal_DisqualifiedResult(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	term.ShowResult(engine.RunOutcome{
		Disqualified: true,
		Result:       scoring.Result{Grade: scoring.GradeDisqualified, Disqualified: true},
	})
	term.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "disqualified")
	assert.NotContains(t, text, "Stopping dist.")
}

func TestTerminal_TooSmall(t *testing.T) {
	term, screen := newTestTerminal(t, 20, 5)
	term.Draw()
	assert.Contains(t, screenText(screen), "terminal too small")
}

func TestTerminal_MutedMarker(t *testing.T) {
	term, screen := newTestTerminal(t, 80, 30)
	term.SetMuted(true)
	term.Draw()
	assert.Contains(t, screenText(screen), "muted")
}
