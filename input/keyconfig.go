package input

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that are awkward in TOML strings
var runeAliases = map[string]rune{
	"space": ' ',
}

// keysByName indexes tcell key names, lower-cased ("enter", "esc", "ctrl-c")
var keysByName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// WithBindings returns a copy of kt where each listed intent is bound exactly to its keys
// Intents not present in bindings keep their default keys
func (kt *KeyTable) WithBindings(bindings map[string][]string) (*KeyTable, error) {
	out := kt.Clone()

	for name, keys := range bindings {
		intent, ok := ParseIntent(name)
		if !ok || intent == IntentNone {
			return nil, fmt.Errorf("keys: unknown intent %q", name)
		}

		// Replace, not extend: drop the intent's default keys first
		for k, v := range out.Keys {
			if v == intent {
				delete(out.Keys, k)
			}
		}
		for r, v := range out.Runes {
			if v == intent {
				delete(out.Runes, r)
			}
		}

		for _, keyStr := range keys {
			if err := out.bind(keyStr, intent); err != nil {
				return nil, fmt.Errorf("keys.%s: %w", name, err)
			}
		}
	}
	return out, nil
}

func (kt *KeyTable) bind(keyStr string, intent Intent) error {
	if r, ok := runeAliases[strings.ToLower(keyStr)]; ok {
		kt.Runes[r] = intent
		return nil
	}
	if runes := []rune(keyStr); len(runes) == 1 {
		kt.Runes[runes[0]] = intent
		return nil
	}
	if k, ok := keysByName[strings.ToLower(keyStr)]; ok {
		kt.Keys[k] = intent
		return nil
	}
	return fmt.Errorf("unknown key name %q", keyStr)
}
