package mcp23s17

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// How long a watcher blocks in WaitForEdge before rechecking for shutdown.
// Bounds the latency of Close.
const edgeWaitTimeout = 100 * time.Millisecond

// watchInterruptLine configures the line for falling edges (the INT outputs
// are active low) and spawns a goroutine relaying each edge to handle. The
// goroutine runs until Close.
func (d *MCP23S17) watchInterruptLine(line gpio.PinIn, handle func()) error {
	if err := line.In(gpio.PullNoChange, gpio.FallingEdge); err != nil {
		return fmt.Errorf("%w: configuring interrupt line %s: %v", ErrIO, line, err)
	}
	d.watchers.Add(1)
	go func() {
		defer d.watchers.Done()
		for {
			select {
			case <-d.closed:
				return
			default:
			}
			if !line.WaitForEdge(edgeWaitTimeout) {
				continue
			}
			if line.Read() != gpio.Low {
				continue
			}
			handle()
		}
	}()
	return nil
}

func (d *MCP23S17) handlePortAInterrupt() {
	intf := d.mustRead(REG_INTFA)
	intcap := d.mustRead(REG_INTCAPA)
	d.dispatchInterrupt(intf, intcap, portA)
}

func (d *MCP23S17) handlePortBInterrupt() {
	intf := d.mustRead(REG_INTFB)
	intcap := d.mustRead(REG_INTCAPB)
	d.dispatchInterrupt(intf, intcap, portB)
}

// mustRead is used during interrupt handling, where there is no caller to
// hand an error back to.
func (d *MCP23S17) mustRead(registerAddress byte) byte {
	value, err := d.read(registerAddress)
	if err != nil {
		log.WithError(err).Fatalf("mcp23s17: reading register %#02x during interrupt handling", registerAddress)
	}
	return value
}

// dispatchInterrupt scans the port's pins in ascending bit order for the
// first flagged pin and relays its captured value to all global listeners,
// then to the listeners of that pin's view. At most one pin event is
// delivered per interrupt signal per port, even when several bits are
// flagged simultaneously.
func (d *MCP23S17) dispatchInterrupt(intf, intcap byte, port int) {
	for i := 0; i < portPinCount; i++ {
		pin := Pin(port*portPinCount + i)
		if !pin.bit(intf) {
			continue
		}
		capturedValue := pin.bit(intcap)
		d.globalListeners.dispatch(capturedValue, pin)
		// May create the PinView before the caller ever asked for it.
		d.PinView(pin).listeners.dispatch(capturedValue, pin)
		break
	}
}
