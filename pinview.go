package mcp23s17

// PinView is the per-pin view of the expander. One PinView exists per Pin,
// created lazily by MCP23S17.PinView and kept for the device's lifetime.
//
// All setters only modify the device's shadow registers; nothing reaches the
// chip until the matching WriteXXX method on the device is invoked. This
// allows reconfiguring many pins of the same port with a single bus
// transaction.
type PinView struct {
	device *MCP23S17
	pin    Pin

	// Listeners registered specifically for this pin (not global listeners).
	listeners listenerSet
}

// Pin returns the Pin this view represents.
func (v *PinView) Pin() Pin {
	return v.pin
}

func (v *PinView) getBit(pair *[2]byte) bool {
	return v.pin.bit(pair[v.pin.portIndex()])
}

func (v *PinView) setBit(pair *[2]byte, value bool) {
	port := v.pin.portIndex()
	pair[port] = v.pin.setBit(pair[port], value)
}

// Get returns the state of the pin. For an output pin this is the OLAT shadow
// bit, i.e. the last commanded value, which may not have been committed to
// the chip yet. For an input pin the GPIO register is read from the chip.
func (v *PinView) Get() (bool, error) {
	if v.IsOutput() {
		return v.getBit(&v.device.regs.olat), nil
	}
	value, err := v.device.read(pinRegister(REG_GPIOA, v.pin))
	if err != nil {
		return false, err
	}
	return v.pin.bit(value), nil
}

// SetValue sets the pin's bit in the OLAT shadow register to the given value.
// Commit with WriteOLATA/WriteOLATB.
func (v *PinView) SetValue(value bool) {
	v.setBit(&v.device.regs.olat, value)
}

// Set sets the pin high (in the OLAT shadow register).
func (v *PinView) Set() {
	v.SetValue(true)
}

// Clear sets the pin low (in the OLAT shadow register).
func (v *PinView) Clear() {
	v.SetValue(false)
}

// IsInput reports whether the pin is configured as input in the IODIR shadow
// register. This is the power-on default.
func (v *PinView) IsInput() bool {
	return v.getBit(&v.device.regs.iodir)
}

// IsOutput reports whether the pin is configured as output.
func (v *PinView) IsOutput() bool {
	return !v.IsInput()
}

// SetDirection sets the pin direction: true for input, false for output.
// Commit with WriteIODIRA/WriteIODIRB.
func (v *PinView) SetDirection(input bool) {
	v.setBit(&v.device.regs.iodir, input)
}

func (v *PinView) SetAsInput() {
	v.SetDirection(true)
}

func (v *PinView) SetAsOutput() {
	v.SetDirection(false)
}

// IsInputInverted reports whether the pin's input polarity is inverted (IPOL
// shadow register).
func (v *PinView) IsInputInverted() bool {
	return v.getBit(&v.device.regs.ipol)
}

// SetInputInverted sets the pin's input polarity. Commit with
// WriteIPOLA/WriteIPOLB.
func (v *PinView) SetInputInverted(inverted bool) {
	v.setBit(&v.device.regs.ipol, inverted)
}

func (v *PinView) InvertInput() {
	v.SetInputInverted(true)
}

func (v *PinView) UninvertInput() {
	v.SetInputInverted(false)
}

// IsInterruptEnabled reports whether interrupt-on-change is enabled for the
// pin (GPINTEN shadow register).
func (v *PinView) IsInterruptEnabled() bool {
	return v.getBit(&v.device.regs.gpinten)
}

// SetInterruptEnabled enables or disables interrupts for the pin. The pin
// must also be configured as input for the chip to generate interrupts.
// Commit with WriteGPINTENA/WriteGPINTENB.
func (v *PinView) SetInterruptEnabled(enabled bool) {
	v.setBit(&v.device.regs.gpinten, enabled)
}

func (v *PinView) EnableInterrupt() {
	v.SetInterruptEnabled(true)
}

func (v *PinView) DisableInterrupt() {
	v.SetInterruptEnabled(false)
}

// DefaultComparisonValue returns the pin's comparison value for interrupt
// comparison mode (DEFVAL shadow register).
func (v *PinView) DefaultComparisonValue() bool {
	return v.getBit(&v.device.regs.defval)
}

// SetDefaultComparisonValue sets the comparison value for interrupt
// comparison mode: the opposite value on the pin raises an interrupt. Commit
// with WriteDEFVALA/WriteDEFVALB.
func (v *PinView) SetDefaultComparisonValue(value bool) {
	v.setBit(&v.device.regs.defval, value)
}

// IsInterruptComparisonMode reports whether the pin's interrupt compares
// against DEFVAL rather than the previous pin value (INTCON shadow register).
func (v *PinView) IsInterruptComparisonMode() bool {
	return v.getBit(&v.device.regs.intcon)
}

// IsInterruptChangeMode reports whether the pin's interrupt fires on any
// change of the pin value. This is the power-on default.
func (v *PinView) IsInterruptChangeMode() bool {
	return !v.IsInterruptComparisonMode()
}

// SetInterruptMode selects the interrupt mode: true for comparison mode,
// false for change mode. Commit with WriteINTCONA/WriteINTCONB.
func (v *PinView) SetInterruptMode(comparison bool) {
	v.setBit(&v.device.regs.intcon, comparison)
}

func (v *PinView) ToInterruptComparisonMode() {
	v.SetInterruptMode(true)
}

func (v *PinView) ToInterruptChangeMode() {
	v.SetInterruptMode(false)
}

// IsPulledUp reports whether the pin's internal pull-up is enabled (GPPU
// shadow register).
func (v *PinView) IsPulledUp() bool {
	return v.getBit(&v.device.regs.gppu)
}

// SetPulledUp enables or disables the pin's internal 100 kOhm pull-up.
// Commit with WriteGPPUA/WriteGPPUB.
func (v *PinView) SetPulledUp(pulledUp bool) {
	v.setBit(&v.device.regs.gppu, pulledUp)
}

func (v *PinView) EnablePullUp() {
	v.SetPulledUp(true)
}

func (v *PinView) DisablePullUp() {
	v.SetPulledUp(false)
}

// AddListener registers an interrupt listener for this pin. No check is made
// that interrupts are actually enabled for the pin; that is up to the caller.
func (v *PinView) AddListener(listener InterruptListener) error {
	return v.listeners.add(listener)
}

// RemoveListener removes a previously registered interrupt listener.
func (v *PinView) RemoveListener(listener InterruptListener) error {
	return v.listeners.remove(listener)
}
