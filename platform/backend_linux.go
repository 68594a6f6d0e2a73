//go:build linux

package platform

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/keybind"

	"lexipop/hotkey"
)

// Keysym names per modifier; either physical key satisfies its group.
var x11KeysymNames = map[hotkey.Modifier][]string{
	hotkey.ModShift: {"Shift_L", "Shift_R"},
	hotkey.ModCtrl:  {"Control_L", "Control_R"},
	hotkey.ModAlt:   {"Alt_L", "Alt_R"},
}

// x11Backend holds one X server connection for its whole lifetime and reads
// the 32-byte keyboard bitmap on every hotkey query.
type x11Backend struct {
	xu     *xgbutil.XUtil
	groups [][]xproto.Keycode
}

func newBackend(spec hotkey.Spec) (Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("cannot connect to X server (is DISPLAY set?): %w", err)
	}
	keybind.Initialize(xu)

	groups := make([][]xproto.Keycode, 0, len(spec.Mods))
	for _, mod := range spec.Mods {
		names, ok := x11KeysymNames[mod]
		if !ok {
			xu.Conn().Close()
			return nil, fmt.Errorf("hotkey modifier %q is not supported on X11 (use shift, ctrl or alt)", mod)
		}

		var group []xproto.Keycode
		for _, name := range names {
			group = append(group, keybind.StrToKeycodes(xu, name)...)
		}
		if len(group) == 0 {
			xu.Conn().Close()
			return nil, fmt.Errorf("no keycodes found for hotkey modifier %q", mod)
		}
		groups = append(groups, group)
	}

	return &x11Backend{xu: xu, groups: groups}, nil
}

func (b *x11Backend) HotkeyPressed() (bool, error) {
	reply, err := xproto.QueryKeymap(b.xu.Conn()).Reply()
	if err != nil {
		return false, fmt.Errorf("query keymap: %w", err)
	}
	return keymapSatisfies(reply.Keys, b.groups), nil
}

func (b *x11Backend) CursorPos() (int, int, error) {
	reply, err := xproto.QueryPointer(b.xu.Conn(), b.xu.RootWin()).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func (b *x11Backend) Close() error {
	b.xu.Conn().Close()
	return nil
}

// keymapSatisfies tests the QueryKeymap bitmap against the modifier groups:
// at least one keycode down in every group.
func keymapSatisfies(keys []byte, groups [][]xproto.Keycode) bool {
	for _, group := range groups {
		down := false
		for _, kc := range group {
			if keys[kc/8]>>(kc%8)&1 == 1 {
				down = true
				break
			}
		}
		if !down {
			return false
		}
	}
	return true
}
