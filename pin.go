package mcp23s17

import "fmt"

// Pin identifies one of the 16 GPIO pins of the MCP23S17. The pins are
// numbered so that port A is PIN0 through PIN7 and port B is PIN8 through
// PIN15. Use PinFromNumber to obtain a validated Pin from an integer.
type Pin uint8

const (
	// Port A
	PIN0 Pin = iota
	PIN1
	PIN2
	PIN3
	PIN4
	PIN5
	PIN6
	PIN7

	// Port B
	PIN8
	PIN9
	PIN10
	PIN11
	PIN12
	PIN13
	PIN14
	PIN15
)

const (
	pinCount     = 16
	portPinCount = 8

	// Indices into the [2]byte register pairs
	portA = 0
	portB = 1
)

// PinFromNumber returns the Pin for the given pin number. It fails with
// ErrInvalidPin if the number is outside 0-15.
func PinFromNumber(number int) (Pin, error) {
	if number < 0 || number >= pinCount {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPin, number)
	}
	return Pin(number), nil
}

// Number returns the pin number (0-15).
func (p Pin) Number() int {
	return int(p)
}

// IsPortA reports whether this pin is in port A (pins 0-7).
func (p Pin) IsPortA() bool {
	return p < portPinCount
}

// IsPortB reports whether this pin is in port B (pins 8-15).
func (p Pin) IsPortB() bool {
	return !p.IsPortA()
}

func (p Pin) String() string {
	return fmt.Sprintf("PIN%d", int(p))
}

// portIndex returns the index of this pin's port into the [2]byte register
// pairs of shadowRegisters.
func (p Pin) portIndex() int {
	if p.IsPortA() {
		return portA
	}
	return portB
}

// mask returns the bit mask of this pin within its port's register byte.
func (p Pin) mask() byte {
	return 1 << (uint(p) % portPinCount)
}

// bit extracts this pin's bit from the given register byte.
func (p Pin) bit(b byte) bool {
	return b&p.mask() != 0
}

// setBit returns the register byte with this pin's bit set to the given
// value. Bits of other pins are left untouched.
func (p Pin) setBit(b byte, value bool) byte {
	if value {
		return b | p.mask()
	}
	return b &^ p.mask()
}

// pinRegister resolves the register address for this pin's port, given the
// port A address of a register pair. Works for all A/B pairs of the BANK=0
// layout, where the two halves are adjacent.
func pinRegister(registerA byte, pin Pin) byte {
	return registerA + byte(pin.portIndex())
}
