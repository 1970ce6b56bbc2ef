// Package input provides the actuator contract for pointer and button
// commands, plus the WebSocket bridge client that carries them.
package input

import "errors"

// Button identifies a pointer button.
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// Sentinel errors for the input package.
var (
	// ErrUnavailable indicates the actuator transport is not connected.
	ErrUnavailable = errors.New("input: actuator unavailable")

	// ErrSendFailed indicates a command could not be delivered.
	ErrSendFailed = errors.New("input: send failed")
)

// Actuator accepts discrete pointer commands. Commands are fire-and-forget
// but report delivery failure so the control loop can degrade.
type Actuator interface {
	// MoveRelative moves the pointer by the given display-pixel delta.
	MoveRelative(dx, dy float64) error

	// ButtonDown presses and holds a button.
	ButtonDown(b Button) error

	// ButtonUp releases a held button.
	ButtonUp(b Button) error

	// Click presses and releases a button.
	Click(b Button) error

	// Close releases the transport.
	Close() error
}
