//go:build !linux && !windows && !darwin

package platform

import (
	"fmt"
	"runtime"

	"lexipop/hotkey"
)

func newBackend(_ hotkey.Spec) (Backend, error) {
	return nil, fmt.Errorf("no input backend for %s", runtime.GOOS)
}
