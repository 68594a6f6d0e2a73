//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"lexipop/hotkey"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
)

// Left/right virtual-key codes per modifier.
var winVKCodes = map[hotkey.Modifier][]uintptr{
	hotkey.ModCtrl:  {0xA2, 0xA3}, // VK_LCONTROL, VK_RCONTROL
	hotkey.ModShift: {0xA0, 0xA1}, // VK_LSHIFT, VK_RSHIFT
	hotkey.ModAlt:   {0xA4, 0xA5}, // VK_LMENU, VK_RMENU
	hotkey.ModCmd:   {0x5B, 0x5C}, // VK_LWIN, VK_RWIN
}

// winBackend polls GetAsyncKeyState; no hook, no message loop, and no handle
// to clean up.
type winBackend struct {
	groups [][]uintptr
}

func newBackend(spec hotkey.Spec) (Backend, error) {
	groups := make([][]uintptr, 0, len(spec.Mods))
	for _, mod := range spec.Mods {
		codes, ok := winVKCodes[mod]
		if !ok {
			return nil, fmt.Errorf("hotkey modifier %q is not supported on Windows", mod)
		}
		groups = append(groups, codes)
	}
	return &winBackend{groups: groups}, nil
}

func (b *winBackend) HotkeyPressed() (bool, error) {
	return groupsDown(b.groups, asyncKeyDown), nil
}

func (b *winBackend) CursorPos() (int, int, error) {
	var pt struct{ X, Y int32 }
	r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos failed: %w", err)
	}
	return int(pt.X), int(pt.Y), nil
}

func (b *winBackend) Close() error { return nil }

func asyncKeyDown(vk uintptr) bool {
	r, _, _ := procGetAsyncKeyState.Call(vk)
	return r&0x8000 != 0
}

// groupsDown reports whether every modifier group has at least one of its
// virtual keys held.
func groupsDown(groups [][]uintptr, down func(uintptr) bool) bool {
	for _, group := range groups {
		hit := false
		for _, vk := range group {
			if down(vk) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
