//go:build !linux && !windows && !darwin

package capture

import (
	"fmt"
	"runtime"
)

func newCapturer(_ Options) (Capturer, error) {
	return nil, fmt.Errorf("no screen capture for %s", runtime.GOOS)
}
