package mcp23s17

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// fakeBus implements spi.Port and spi.Conn. It records every transaction and
// answers register reads from a canned response table. The mutex matters for
// the interrupt tests, where the watcher goroutine transacts while the test
// goroutine inspects.
type fakeBus struct {
	mu           sync.Mutex
	transactions [][]byte
	responses    map[byte]byte
	err          error

	speed physic.Frequency
	mode  spi.Mode
}

func newFakeBus() *fakeBus {
	return &fakeBus{responses: make(map[byte]byte)}
}

func (b *fakeBus) String() string {
	return "fake-spi"
}

func (b *fakeBus) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	b.speed = f
	b.mode = mode
	return b, nil
}

func (b *fakeBus) Duplex() conn.Duplex {
	return conn.Full
}

func (b *fakeBus) TxPackets(p []spi.Packet) error {
	return errors.New("fake-spi: TxPackets not supported")
}

func (b *fakeBus) Tx(w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if len(w) == 3 && w[0] == READ_OPCODE && len(r) == 3 {
		r[2] = b.responses[w[1]]
	}
	b.transactions = append(b.transactions, append([]byte(nil), w...))
	return nil
}

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.transactions)
}

func (b *fakeBus) transaction(i int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transactions[i]
}

func newTestDevice(t *testing.T) (*MCP23S17, *fakeBus) {
	bus := newFakeBus()
	cs := &gpiotest.Pin{N: "CS", Num: 8}
	dev, err := NewWithoutInterrupts(bus, cs)
	require.NoError(t, err)
	return dev, bus
}

func TestConstructionDefaults(t *testing.T) {
	a := assert.New(t)
	dev, bus := newTestDevice(t)

	a.Equal(SPI_SPEED, bus.speed)
	a.Equal(spi.Mode0, bus.mode)
	for _, view := range dev.PinViews() {
		a.True(view.IsInput(), "%v should default to input", view.Pin())
		a.False(view.IsPulledUp(), "%v should not be pulled up", view.Pin())
		a.False(view.IsInputInverted(), "%v should not be inverted", view.Pin())
		a.False(view.IsInterruptEnabled(), "%v should not have interrupts enabled", view.Pin())
		a.True(view.IsInterruptChangeMode(), "%v should default to change mode", view.Pin())
		a.False(view.DefaultComparisonValue(), "%v comparison value should be clear", view.Pin())
	}
	a.Equal(0, bus.count(), "construction must not issue bus transactions")
}

func TestConstructorNilArguments(t *testing.T) {
	a := assert.New(t)
	bus := newFakeBus()
	cs := &gpiotest.Pin{N: "CS", Num: 8}
	intr := &gpiotest.Pin{N: "INT", Num: 17, EdgesChan: make(chan gpio.Level)}

	_, err := NewWithoutInterrupts(nil, cs)
	a.Error(err)
	_, err = NewWithoutInterrupts(bus, nil)
	a.Error(err)
	_, err = NewWithTiedInterrupts(bus, cs, nil)
	a.Error(err)
	_, err = NewWithInterrupts(bus, cs, intr, nil)
	a.Error(err)
	_, err = NewWithInterrupts(bus, cs, nil, intr)
	a.Error(err)
	_, err = NewWithPortAInterrupts(bus, cs, nil)
	a.Error(err)
	_, err = NewWithPortBInterrupts(bus, cs, nil)
	a.Error(err)
}

func TestPinViewIdentity(t *testing.T) {
	a := assert.New(t)
	dev, _ := newTestDevice(t)

	view := dev.PinView(PIN3)
	a.Same(view, dev.PinView(PIN3))
	a.Equal(PIN3, view.Pin())

	views := dev.PinViews()
	a.Len(views, 16)
	for i, view := range views {
		a.Equal(i, view.Pin().Number())
		a.Same(view, dev.PinView(Pin(i)))
	}
}

func TestWriteCommitFrames(t *testing.T) {
	a := assert.New(t)
	dev, bus := newTestDevice(t)

	dev.PinView(PIN5).SetAsOutput()
	a.NoError(dev.WriteIODIRA())
	a.Equal([]byte{WRITE_OPCODE, REG_IODIRA, 0xDF}, bus.transaction(0))

	dev.PinView(PIN9).EnablePullUp()
	dev.PinView(PIN10).EnablePullUp()
	a.NoError(dev.WriteGPPUB())
	a.Equal([]byte{WRITE_OPCODE, REG_GPPUB, 0x06}, bus.transaction(1))

	dev.PinView(PIN0).EnableInterrupt()
	a.NoError(dev.WriteGPINTENA())
	a.Equal([]byte{WRITE_OPCODE, REG_GPINTENA, 0x01}, bus.transaction(2))

	dev.PinView(PIN15).SetValue(true)
	a.NoError(dev.WriteOLATB())
	a.Equal([]byte{WRITE_OPCODE, REG_OLATB, 0x80}, bus.transaction(3))

	a.Equal(4, bus.count(), "each commit must be exactly one transaction")
}

func TestBatchedCommit(t *testing.T) {
	a := assert.New(t)
	dev, bus := newTestDevice(t)

	// Reconfigure several pins of port A, then commit the whole byte at once.
	for _, pin := range []Pin{PIN0, PIN1, PIN2, PIN3} {
		dev.PinView(pin).SetAsOutput()
	}
	a.Equal(0, bus.count())
	a.NoError(dev.WriteIODIRA())
	a.Equal(1, bus.count())
	a.Equal([]byte{WRITE_OPCODE, REG_IODIRA, 0xF0}, bus.transaction(0))
}

func TestReadFrame(t *testing.T) {
	a := assert.New(t)
	dev, bus := newTestDevice(t)
	bus.responses[REG_GPIOA] = 0xA5

	value, err := dev.read(REG_GPIOA)
	a.NoError(err)
	a.Equal(byte(0xA5), value)
	a.Equal([]byte{READ_OPCODE, REG_GPIOA, 0x00}, bus.transaction(0))
}

func TestIOFailure(t *testing.T) {
	a := assert.New(t)
	bus := newFakeBus()
	cs := &gpiotest.Pin{N: "CS", Num: 8}
	dev, err := NewWithoutInterrupts(bus, cs)
	require.NoError(t, err)

	bus.err = errors.New("broken wire")
	err = dev.WriteIODIRA()
	a.True(errors.Is(err, ErrIO), "expected ErrIO, got %v", err)
	a.Equal(gpio.High, cs.Read(), "chip select must be released after a failed write")

	_, err = dev.PinView(PIN0).Get()
	a.True(errors.Is(err, ErrIO), "expected ErrIO, got %v", err)
	a.Equal(gpio.High, cs.Read(), "chip select must be released after a failed read")
}

func TestGlobalListenerContract(t *testing.T) {
	a := assert.New(t)
	dev, _ := newTestDevice(t)

	listener := ListenerFunc(func(bool, Pin) {})
	a.NoError(dev.AddGlobalListener(listener))
	a.ErrorIs(dev.AddGlobalListener(listener), ErrInvalidListener)
	a.ErrorIs(dev.AddGlobalListener(nil), ErrInvalidListener)
	a.NoError(dev.RemoveGlobalListener(listener))
	a.ErrorIs(dev.RemoveGlobalListener(listener), ErrInvalidListener)
	a.ErrorIs(dev.RemoveGlobalListener(nil), ErrInvalidListener)
}
