// Package mcp23s17 allows interfacing with the MCP23S17 16-bit SPI IO
// expansion chip.
//
// The package abstracts away the register map and SPI framing of the chip
// behind per-pin PinView objects, obtained from MCP23S17.PinView. PinView
// setters never touch the bus: they only modify in-memory shadow registers,
// and a batch of changes is pushed to the chip with one of the WriteXXX
// methods, one bus transaction per register byte.
//
// To use interrupts, the chip's INTA/INTB lines must be passed to the
// matching constructor; one constructor exists per interrupt wiring. Both
// per-pin listeners (PinView.AddListener) and global listeners
// (MCP23S17.AddGlobalListener) can then be registered. Each pin that is
// supposed to generate interrupts must additionally be configured as such in
// the GPINTEN/DEFVAL/INTCON registers.
//
// The shadow register bytes are not synchronized internally: concurrent
// mutations of the same register pair, or a mutation racing a WriteXXX call
// of the same pair, must be serialized by the caller. The same holds for
// concurrent WriteXXX/read calls, which would otherwise interleave on the
// bus.
package mcp23s17

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI_SPEED is the bus speed the constructors connect at. The chip supports
// up to 10 MHz.
const SPI_SPEED = 1 * physic.MegaHertz

// MCP23S17 represents one MCP23S17 chip on an SPI bus with a dedicated chip
// select line.
type MCP23S17 struct {
	conn spi.Conn
	cs   gpio.PinOut

	regs shadowRegisters

	viewsMu sync.Mutex
	views   [pinCount]*PinView

	globalListeners listenerSet

	closeOnce sync.Once
	closed    chan struct{}
	watchers  sync.WaitGroup
}

func newDevice(port spi.Port, chipSelect gpio.PinOut) (*MCP23S17, error) {
	if port == nil {
		return nil, errors.New("mcp23s17: spi port must be non-nil")
	}
	if chipSelect == nil {
		return nil, errors.New("mcp23s17: chip select must be non-nil")
	}
	conn, err := port.Connect(SPI_SPEED, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting spi port: %v", ErrIO, err)
	}
	d := &MCP23S17{
		conn:   conn,
		cs:     chipSelect,
		regs:   newShadowRegisters(),
		closed: make(chan struct{}),
	}
	// Chip select is active low, park it high before the first transaction.
	if err := d.cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("%w: raising chip select: %v", ErrIO, err)
	}
	return d, nil
}

// NewWithoutInterrupts returns a device with no interrupt lines wired up.
func NewWithoutInterrupts(port spi.Port, chipSelect gpio.PinOut) (*MCP23S17, error) {
	return newDevice(port, chipSelect)
}

// NewWithTiedInterrupts returns a device whose INTA and INTB outputs are
// physically tied to the given single line. The IOCON.MIRROR bit is set so
// the chip ORs both ports onto that line; one falling edge triggers the
// port A interrupt pass followed by the port B pass.
func NewWithTiedInterrupts(port spi.Port, chipSelect gpio.PinOut, interrupt gpio.PinIn) (*MCP23S17, error) {
	if interrupt == nil {
		return nil, errors.New("mcp23s17: interrupt line must be non-nil")
	}
	d, err := newDevice(port, chipSelect)
	if err != nil {
		return nil, err
	}
	// OR the INTA and INTB lines together on the chip.
	if err := d.write(REG_IOCON, IOCON_BIT_MIRROR); err != nil {
		return nil, err
	}
	if err := d.watchInterruptLine(interrupt, func() {
		d.handlePortAInterrupt()
		d.handlePortBInterrupt()
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithInterrupts returns a device with both INTA and INTB wired to
// independent lines.
func NewWithInterrupts(port spi.Port, chipSelect gpio.PinOut, portAInterrupt, portBInterrupt gpio.PinIn) (*MCP23S17, error) {
	if portAInterrupt == nil {
		return nil, errors.New("mcp23s17: port A interrupt line must be non-nil")
	}
	if portBInterrupt == nil {
		return nil, errors.New("mcp23s17: port B interrupt line must be non-nil")
	}
	d, err := newDevice(port, chipSelect)
	if err != nil {
		return nil, err
	}
	if err := d.watchInterruptLine(portAInterrupt, d.handlePortAInterrupt); err != nil {
		return nil, err
	}
	if err := d.watchInterruptLine(portBInterrupt, d.handlePortBInterrupt); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithPortAInterrupts returns a device with only the INTA line wired up.
func NewWithPortAInterrupts(port spi.Port, chipSelect gpio.PinOut, portAInterrupt gpio.PinIn) (*MCP23S17, error) {
	if portAInterrupt == nil {
		return nil, errors.New("mcp23s17: port A interrupt line must be non-nil")
	}
	d, err := newDevice(port, chipSelect)
	if err != nil {
		return nil, err
	}
	if err := d.watchInterruptLine(portAInterrupt, d.handlePortAInterrupt); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithPortBInterrupts returns a device with only the INTB line wired up.
func NewWithPortBInterrupts(port spi.Port, chipSelect gpio.PinOut, portBInterrupt gpio.PinIn) (*MCP23S17, error) {
	if portBInterrupt == nil {
		return nil, errors.New("mcp23s17: port B interrupt line must be non-nil")
	}
	d, err := newDevice(port, chipSelect)
	if err != nil {
		return nil, err
	}
	if err := d.watchInterruptLine(portBInterrupt, d.handlePortBInterrupt); err != nil {
		return nil, err
	}
	return d, nil
}

// PinView returns the PinView for the given pin, creating it on first use.
// The same pin always yields the same PinView instance.
func (d *MCP23S17) PinView(pin Pin) *PinView {
	// Also called during interrupt dispatch, hence the lock.
	d.viewsMu.Lock()
	defer d.viewsMu.Unlock()
	view := d.views[pin]
	if view == nil {
		view = &PinView{device: d, pin: pin}
		d.views[pin] = view
	}
	return view
}

// PinViews returns the views of all 16 pins in pin number order.
func (d *MCP23S17) PinViews() []*PinView {
	views := make([]*PinView, pinCount)
	for i := range views {
		views[i] = d.PinView(Pin(i))
	}
	return views
}

// AddGlobalListener registers a listener invoked for interrupts on any pin.
// No check is made that interrupts are enabled for any pin.
func (d *MCP23S17) AddGlobalListener(listener InterruptListener) error {
	return d.globalListeners.add(listener)
}

// RemoveGlobalListener removes a previously registered global listener.
func (d *MCP23S17) RemoveGlobalListener(listener InterruptListener) error {
	return d.globalListeners.remove(listener)
}

// write pushes one register byte to the chip. The chip select line is
// released on every exit path, also when the transaction fails.
func (d *MCP23S17) write(registerAddress, value byte) error {
	log.Debugf("mcp23s17: writing %#02x to register %#02x", value, registerAddress)
	if err := d.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: asserting chip select: %v", ErrIO, err)
	}
	err := d.conn.Tx([]byte{WRITE_OPCODE, registerAddress, value}, nil)
	csErr := d.cs.Out(gpio.High)
	if err != nil {
		return fmt.Errorf("%w: writing register %#02x: %v", ErrIO, registerAddress, err)
	}
	if csErr != nil {
		return fmt.Errorf("%w: releasing chip select: %v", ErrIO, csErr)
	}
	return nil
}

// read fetches one register byte from the chip.
func (d *MCP23S17) read(registerAddress byte) (byte, error) {
	if err := d.cs.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("%w: asserting chip select: %v", ErrIO, err)
	}
	response := make([]byte, 3)
	// The 0x00 byte is filler clocking out the response.
	err := d.conn.Tx([]byte{READ_OPCODE, registerAddress, 0x00}, response)
	csErr := d.cs.Out(gpio.High)
	if err != nil {
		return 0, fmt.Errorf("%w: reading register %#02x: %v", ErrIO, registerAddress, err)
	}
	if csErr != nil {
		return 0, fmt.Errorf("%w: releasing chip select: %v", ErrIO, csErr)
	}
	log.Debugf("mcp23s17: read %#02x from register %#02x", response[2], registerAddress)
	return response[2], nil
}

// WriteIODIRA commits the port A direction shadow register to the chip.
func (d *MCP23S17) WriteIODIRA() error {
	return d.write(REG_IODIRA, d.regs.iodir[portA])
}

// WriteIODIRB commits the port B direction shadow register to the chip.
func (d *MCP23S17) WriteIODIRB() error {
	return d.write(REG_IODIRB, d.regs.iodir[portB])
}

// WriteIPOLA commits the port A input polarity shadow register to the chip.
func (d *MCP23S17) WriteIPOLA() error {
	return d.write(REG_IPOLA, d.regs.ipol[portA])
}

// WriteIPOLB commits the port B input polarity shadow register to the chip.
func (d *MCP23S17) WriteIPOLB() error {
	return d.write(REG_IPOLB, d.regs.ipol[portB])
}

// WriteGPINTENA commits the port A interrupt enable shadow register to the chip.
func (d *MCP23S17) WriteGPINTENA() error {
	return d.write(REG_GPINTENA, d.regs.gpinten[portA])
}

// WriteGPINTENB commits the port B interrupt enable shadow register to the chip.
func (d *MCP23S17) WriteGPINTENB() error {
	return d.write(REG_GPINTENB, d.regs.gpinten[portB])
}

// WriteDEFVALA commits the port A default comparison shadow register to the chip.
func (d *MCP23S17) WriteDEFVALA() error {
	return d.write(REG_DEFVALA, d.regs.defval[portA])
}

// WriteDEFVALB commits the port B default comparison shadow register to the chip.
func (d *MCP23S17) WriteDEFVALB() error {
	return d.write(REG_DEFVALB, d.regs.defval[portB])
}

// WriteINTCONA commits the port A interrupt mode shadow register to the chip.
func (d *MCP23S17) WriteINTCONA() error {
	return d.write(REG_INTCONA, d.regs.intcon[portA])
}

// WriteINTCONB commits the port B interrupt mode shadow register to the chip.
func (d *MCP23S17) WriteINTCONB() error {
	return d.write(REG_INTCONB, d.regs.intcon[portB])
}

// WriteGPPUA commits the port A pull-up shadow register to the chip.
func (d *MCP23S17) WriteGPPUA() error {
	return d.write(REG_GPPUA, d.regs.gppu[portA])
}

// WriteGPPUB commits the port B pull-up shadow register to the chip.
func (d *MCP23S17) WriteGPPUB() error {
	return d.write(REG_GPPUB, d.regs.gppu[portB])
}

// WriteOLATA commits the port A output latch shadow register to the chip.
func (d *MCP23S17) WriteOLATA() error {
	return d.write(REG_OLATA, d.regs.olat[portA])
}

// WriteOLATB commits the port B output latch shadow register to the chip.
func (d *MCP23S17) WriteOLATB() error {
	return d.write(REG_OLATB, d.regs.olat[portB])
}

// Close stops the interrupt watchers and waits for them to exit. The chip
// itself is left as configured. Close is idempotent.
func (d *MCP23S17) Close() error {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.watchers.Wait()
	})
	return nil
}
