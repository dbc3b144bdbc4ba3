package mcp23s17

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinNumbering(t *testing.T) {
	a := assert.New(t)
	for number := 0; number < 16; number++ {
		pin, err := PinFromNumber(number)
		a.NoError(err)
		a.Equal(number, pin.Number())
		a.Equal(number < 8, pin.IsPortA(), "port A membership of pin %v", number)
		a.Equal(number >= 8, pin.IsPortB(), "port B membership of pin %v", number)
	}

	for _, number := range []int{-1, -100, 16, 17, 255} {
		_, err := PinFromNumber(number)
		a.True(errors.Is(err, ErrInvalidPin), "pin number %v must be rejected", number)
	}
}

func TestPinConstants(t *testing.T) {
	a := assert.New(t)
	a.Equal(0, PIN0.Number())
	a.Equal(7, PIN7.Number())
	a.Equal(8, PIN8.Number())
	a.Equal(15, PIN15.Number())
	a.Equal("PIN0", PIN0.String())
	a.Equal("PIN15", PIN15.String())
}

func TestPinBits(t *testing.T) {
	a := assert.New(t)
	for number := 0; number < 16; number++ {
		pin := Pin(number)
		a.Equal(byte(1)<<(number%8), pin.mask(), "mask of pin %v", number)

		// Setting and clearing round-trips.
		a.True(pin.bit(pin.setBit(0x00, true)))
		a.False(pin.bit(pin.setBit(0xFF, false)))

		// Bits of other pins in the same byte are untouched.
		a.Equal(pin.mask(), pin.setBit(0x00, true))
		a.Equal(byte(0xFF)&^pin.mask(), pin.setBit(0xFF, false))
		a.Equal(byte(0xFF), pin.setBit(0xFF, true))
		a.Equal(byte(0x00), pin.setBit(0x00, false))
	}
}

func TestPinRegisterResolution(t *testing.T) {
	a := assert.New(t)
	a.Equal(REG_GPIOA, pinRegister(REG_GPIOA, PIN0))
	a.Equal(REG_GPIOA, pinRegister(REG_GPIOA, PIN7))
	a.Equal(REG_GPIOB, pinRegister(REG_GPIOA, PIN8))
	a.Equal(REG_OLATB, pinRegister(REG_OLATA, PIN15))
	a.Equal(REG_INTFB, pinRegister(REG_INTFA, PIN9))
}

func TestRegisterAddressMap(t *testing.T) {
	// The BANK=0 layout is part of the wire contract.
	a := assert.New(t)
	a.Equal(byte(0x00), REG_IODIRA)
	a.Equal(byte(0x01), REG_IODIRB)
	a.Equal(byte(0x02), REG_IPOLA)
	a.Equal(byte(0x04), REG_GPINTENA)
	a.Equal(byte(0x06), REG_DEFVALA)
	a.Equal(byte(0x08), REG_INTCONA)
	a.Equal(byte(0x0A), REG_IOCON)
	a.Equal(byte(0x0C), REG_GPPUA)
	a.Equal(byte(0x0E), REG_INTFA)
	a.Equal(byte(0x10), REG_INTCAPA)
	a.Equal(byte(0x12), REG_GPIOA)
	a.Equal(byte(0x14), REG_OLATA)
	a.Equal(byte(0x15), REG_OLATB)
	a.Equal(byte(0x40), IOCON_BIT_MIRROR)
}
