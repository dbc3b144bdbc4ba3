package mcp23s17

import "errors"

// Every error returned by this package wraps one of these sentinels, so
// errors.Is can be used to classify failures.
var (
	// ErrInvalidPin is returned for pin numbers outside 0-15.
	ErrInvalidPin = errors.New("mcp23s17: invalid pin number")

	// ErrInvalidListener is returned when adding a nil or already registered
	// listener, or when removing a listener that was never registered.
	ErrInvalidListener = errors.New("mcp23s17: invalid listener")

	// ErrIO is returned when an SPI transaction or a chip select toggle
	// fails. Transactions are not retried.
	ErrIO = errors.New("mcp23s17: bus transaction failed")
)
