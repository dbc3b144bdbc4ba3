package mcp23s17

// Default bits all zero, except IODIR

// ============== General IO configuration
// IODIR: 0: output, 1: input
// IPOL: 1: GPIO reflects inverted value of the pin
// GPIO: Reading reads pin values. Writing modifies OLAT.
// OLAT: Output values ("latches")
// GPPU: 1: enable internal pull-up for input pins (100 kOhm)

// ============== Interrupt configuration
// GPINTEN: 1: enable interrupt-on-change. Pins must also be input.
// DEFVAL: opposite value on input pin will cause interrupt (if INTCON is set)
// INTCON: for interrupt: 0: pins compared to previous value 1: pins compared to DEFVAL
// INTF: (read only) interrupt flags. Cleared when INTCAP or GPIO is read.
// INTCAP: (read only) state of pins when interrupt occurs. Remains unchanged until read (or GPIO is read)

// Register addresses when the BANK bit in IOCON is cleared (power-on
// default): registers come as adjacent A/B pairs, except IOCON.
const (
	REG_IODIRA = byte(iota)
	REG_IODIRB
	REG_IPOLA
	REG_IPOLB
	REG_GPINTENA
	REG_GPINTENB
	REG_DEFVALA
	REG_DEFVALB
	REG_INTCONA
	REG_INTCONB
	REG_IOCON
	_ // IOCON, mirrored
	REG_GPPUA
	REG_GPPUB
	REG_INTFA
	REG_INTFB
	REG_INTCAPA
	REG_INTCAPB
	REG_GPIOA
	REG_GPIOB
	REG_OLATA
	REG_OLATB
)

const (
	_                = byte(1 << iota)
	IOCON_BIT_INTPOL // 1: INT pins active-high 0: INT pins active-low
	IOCON_BIT_ODR    // (overrides INTPOL) 1: INT pins are open-drain 0: active output (INTPOL sets polarity)
	IOCON_BIT_HAEN   // Enable hardware address pins (zero otherwise)
	IOCON_BIT_DISSLW // 0: slew rate control for SDA output enabled 1: disabled
	IOCON_BIT_SEQOP  // 0: sequential operation enabled 1: disabled (address stays after read/write)
	IOCON_BIT_MIRROR // 0: INT pins not mirrored 1: INT pins mirrored (both high if one is high)
	IOCON_BIT_BANK   // 1: registers grouped in banks 0: registers paired
)

const (
	WRITE_OPCODE = byte(0x40)
	READ_OPCODE  = byte(0x41)

	// Values for IODIR registers
	INPUT  = byte(0xFF)
	OUTPUT = byte(0x00)
)

// shadowRegisters holds the in-memory copies of the writable chip registers,
// one A/B byte pair per register. They are mutated exclusively through
// PinView setters and pushed to the chip by the WriteXXX methods on MCP23S17.
// INTF, INTCAP and GPIO are read-only on the chip and are never shadowed.
type shadowRegisters struct {
	iodir   [2]byte
	ipol    [2]byte
	gpinten [2]byte
	defval  [2]byte
	intcon  [2]byte
	gppu    [2]byte
	olat    [2]byte
}

// newShadowRegisters returns the shadow registers with the chip's power-on
// reset values: all pins input, everything else zero.
func newShadowRegisters() shadowRegisters {
	return shadowRegisters{
		iodir: [2]byte{INPUT, INPUT},
	}
}
