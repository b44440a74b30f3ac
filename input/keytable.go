package input

import "github.com/gdamore/tcell/v2"

// KeyTable maps terminal keys to intents
type KeyTable struct {
	// Special keys (Enter, Esc, Ctrl+*)
	Keys map[tcell.Key]Intent
	// Printable runes, space included
	Runes map[rune]Intent
}

// DefaultKeyTable returns the default bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Intent{
			tcell.KeyEnter:  IntentStart,
			tcell.KeyEscape: IntentQuit,
			tcell.KeyCtrlC:  IntentQuit,
		},
		Runes: map[rune]Intent{
			' ': IntentBrake,
			'b': IntentBrake,
			's': IntentStart,
			'r': IntentRestart,
			'q': IntentQuit,
			'm': IntentToggleMute,
		},
	}
}

// Lookup returns the intent bound to ev, IntentNone if unbound
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Intent {
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[ev.Rune()]
	}
	return kt.Keys[ev.Key()]
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	out := &KeyTable{
		Keys:  make(map[tcell.Key]Intent, len(kt.Keys)),
		Runes: make(map[rune]Intent, len(kt.Runes)),
	}
	for k, v := range kt.Keys {
		out.Keys[k] = v
	}
	for k, v := range kt.Runes {
		out.Runes[k] = v
	}
	return out
}
