//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

static unsigned long long currentModifierFlags() {
	return (unsigned long long)CGEventSourceFlagsState(kCGEventSourceStateCombinedSessionState);
}

static void currentCursorPos(double *x, double *y) {
	CGEventRef event = CGEventCreate(NULL);
	CGPoint point = CGEventGetLocation(event);
	CFRelease(event);
	*x = point.x;
	*y = point.y;
}
*/
import "C"
import (
	"fmt"

	"lexipop/hotkey"
)

// CGEventFlags masks per modifier.
var macFlagMasks = map[hotkey.Modifier]uint64{
	hotkey.ModShift: 1 << 17, // kCGEventFlagMaskShift
	hotkey.ModCtrl:  1 << 18, // kCGEventFlagMaskControl
	hotkey.ModAlt:   1 << 19, // kCGEventFlagMaskAlternate
	hotkey.ModCmd:   1 << 20, // kCGEventFlagMaskCommand
}

// macBackend reads the global modifier-flag bitmask; the flags already fold
// the left/right keys of each modifier together.
type macBackend struct {
	masks []uint64
}

func newBackend(spec hotkey.Spec) (Backend, error) {
	masks := make([]uint64, 0, len(spec.Mods))
	for _, mod := range spec.Mods {
		mask, ok := macFlagMasks[mod]
		if !ok {
			return nil, fmt.Errorf("hotkey modifier %q is not supported on macOS", mod)
		}
		masks = append(masks, mask)
	}
	return &macBackend{masks: masks}, nil
}

func (b *macBackend) HotkeyPressed() (bool, error) {
	flags := uint64(C.currentModifierFlags())
	for _, mask := range b.masks {
		if flags&mask == 0 {
			return false, nil
		}
	}
	return true, nil
}

func (b *macBackend) CursorPos() (int, int, error) {
	var x, y C.double
	C.currentCursorPos(&x, &y)
	return int(x), int(y), nil
}

func (b *macBackend) Close() error { return nil }
