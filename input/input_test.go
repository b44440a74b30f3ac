package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/brakezone/engine"
)

func TestDefaultKeyTable(t *testing.T) {
	kt := DefaultKeyTable()
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Intent
	}{
		{"space brakes", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), IntentBrake},
		{"b brakes", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone), IntentBrake},
		{"enter starts", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), IntentStart},
		{"s starts", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), IntentStart},
		{"r restarts", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), IntentRestart},
		{"esc quits", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), IntentQuit},
		{"ctrl-c quits", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), IntentQuit},
		{"m mutes", tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone), IntentToggleMute},
		{"unbound", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), IntentNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kt.Lookup(tt.ev))
		})
	}
}

func TestWithBindingsReplacesIntentKeys(t *testing.T) {
	base := DefaultKeyTable()
	kt, err := base.WithBindings(map[string][]string{
		"brake": {"j", "Enter"},
	})
	require.NoError(t, err)

	assert.Equal(t, IntentBrake, kt.Runes['j'])
	assert.Equal(t, IntentBrake, kt.Keys[tcell.KeyEnter])
	_, hasSpace := kt.Runes[' ']
	assert.False(t, hasSpace, "default brake keys are replaced")
	assert.Equal(t, IntentStart, kt.Runes['s'], "other intents keep defaults")

	// base untouched
	assert.Equal(t, IntentBrake, base.Runes[' '])
	assert.Equal(t, IntentStart, base.Keys[tcell.KeyEnter])
}

func TestWithBindingsAliasesAndErrors(t *testing.T) {
	kt, err := DefaultKeyTable().WithBindings(map[string][]string{"mute": {"space"}})
	require.NoError(t, err)
	assert.Equal(t, IntentToggleMute, kt.Runes[' '])

	_, err = DefaultKeyTable().WithBindings(map[string][]string{"jump": {"x"}})
	assert.Error(t, err)
	_, err = DefaultKeyTable().WithBindings(map[string][]string{"brake": {"NoSuchKey"}})
	assert.Error(t, err)
}

func TestParseRemote(t *testing.T) {
	assert.Equal(t, IntentStart, ParseRemote("start"))
	assert.Equal(t, IntentBrake, ParseRemote("brake"))
	assert.Equal(t, IntentBrake, ParseRemote(" Touch "))
	assert.Equal(t, IntentRestart, ParseRemote("restart"))
	assert.Equal(t, IntentNone, ParseRemote("ping"))
}

func TestParseIntent(t *testing.T) {
	i, ok := ParseIntent("Brake")
	assert.True(t, ok)
	assert.Equal(t, IntentBrake, i)
	_, ok = ParseIntent("jump")
	assert.False(t, ok)
	assert.Equal(t, "mute", IntentToggleMute.String())
}

type fakeController struct {
	phase  engine.Phase
	events []engine.EventType
}

func (c *fakeController) Push(t engine.EventType) { c.events = append(c.events, t) }
func (c *fakeController) Phase() engine.Phase     { return c.phase }

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		phase  engine.Phase
		intent Intent
		want   []engine.EventType
		ok     bool
	}{
		{"start from idle", engine.PhaseIdle, IntentStart, []engine.EventType{engine.EventStart}, true},
		{"start while running", engine.PhaseRunning, IntentStart, nil, true},
		{"start after finish restarts", engine.PhaseEnded, IntentStart, []engine.EventType{engine.EventRestart}, true},
		{"brake", engine.PhaseRunning, IntentBrake, []engine.EventType{engine.EventBrake}, true},
		{"restart", engine.PhaseEnded, IntentRestart, []engine.EventType{engine.EventRestart}, true},
		{"quit is not simulation", engine.PhaseRunning, IntentQuit, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeController{phase: tt.phase}
			assert.Equal(t, tt.ok, Apply(c, tt.intent))
			assert.Equal(t, tt.want, c.events)
		})
	}
}
