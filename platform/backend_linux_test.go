//go:build linux

package platform

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

func bitmapWith(keycodes ...xproto.Keycode) []byte {
	keys := make([]byte, 32)
	for _, kc := range keycodes {
		keys[kc/8] |= 1 << (kc % 8)
	}
	return keys
}

func TestKeymapSatisfies(t *testing.T) {
	// Typical layout: 37/105 left/right ctrl, 50/62 left/right shift.
	ctrl := []xproto.Keycode{37, 105}
	shift := []xproto.Keycode{50, 62}
	groups := [][]xproto.Keycode{ctrl, shift}

	tests := []struct {
		name string
		keys []byte
		want bool
	}{
		{"nothing held", bitmapWith(), false},
		{"only ctrl", bitmapWith(37), false},
		{"only shift", bitmapWith(50), false},
		{"ctrl and shift", bitmapWith(37, 50), true},
		{"right ctrl and left shift", bitmapWith(105, 50), true},
		{"both shifts, no ctrl", bitmapWith(50, 62), false},
		{"unrelated key", bitmapWith(24), false},
		{"combo plus unrelated key", bitmapWith(37, 62, 24), true},
	}

	for _, tt := range tests {
		if got := keymapSatisfies(tt.keys, groups); got != tt.want {
			t.Errorf("%s: keymapSatisfies = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeymapSatisfiesSingleGroup(t *testing.T) {
	shift := [][]xproto.Keycode{{50, 62}}

	if keymapSatisfies(bitmapWith(), shift) {
		t.Error("empty bitmap should not satisfy shift")
	}
	if !keymapSatisfies(bitmapWith(62), shift) {
		t.Error("right shift alone should satisfy the shift group")
	}
}
