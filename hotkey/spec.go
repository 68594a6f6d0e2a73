// Package hotkey parses modifier hotkey combos like "ctrl+shift".
package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is one AND-ed term of a hotkey combo. Each platform backend maps
// a modifier to the set of physical keys (left/right variants) that satisfy
// it.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModCmd   Modifier = "cmd"
)

// Spec is a parsed hotkey: the combo counts as pressed only while every
// listed modifier is held simultaneously.
type Spec struct {
	Mods []Modifier
	raw  string
}

// Parse parses a `+`-joined modifier combo (e.g. "ctrl+shift") into a Spec.
// Tokens are case-insensitive. An unknown or empty token is an error; the
// caller treats it as a fatal configuration problem, not something to skip.
func Parse(combo string) (Spec, error) {
	raw := strings.ToLower(strings.TrimSpace(combo))
	if raw == "" {
		return Spec{}, fmt.Errorf("empty hotkey combo")
	}

	parts := strings.Split(raw, "+")
	mods := make([]Modifier, 0, len(parts))
	for _, part := range parts {
		switch m := Modifier(strings.TrimSpace(part)); m {
		case ModCtrl, ModShift, ModAlt, ModCmd:
			mods = append(mods, m)
		default:
			return Spec{}, fmt.Errorf("unsupported hotkey modifier %q in %q (use ctrl, shift, alt or cmd)", part, combo)
		}
	}

	return Spec{Mods: mods, raw: raw}, nil
}

// String returns the normalized combo string.
func (s Spec) String() string {
	return s.raw
}
