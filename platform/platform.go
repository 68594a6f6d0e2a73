// Package platform provides the per-OS input backends: a poll-style query
// for the configured hotkey and the global pointer position.
package platform

import "lexipop/hotkey"

// Backend answers two questions about the current input state. Queries are
// synchronous, fast OS calls made from the poller thread. A non-nil error
// from HotkeyPressed means the reading was unavailable this instant; callers
// collapse it to "not pressed" and carry on.
type Backend interface {
	HotkeyPressed() (bool, error)
	CursorPos() (int, int, error)
	Close() error
}

// New constructs the backend for the running OS. Construction re-runs all
// platform validation of the hotkey spec, so a failure here is a fatal
// configuration problem: an unmappable modifier, no display connection, or
// missing privileges.
func New(spec hotkey.Spec) (Backend, error) {
	return newBackend(spec)
}
