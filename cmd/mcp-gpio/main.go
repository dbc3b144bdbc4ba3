package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/antongulenko/golib"
	"github.com/rrr-robotics/mcp23s17"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type commandFunc func(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error

var (
	spiPort   = "SPI0.0"
	csName    = "GPIO8"
	intAName  = ""
	intBName  = ""
	tied      = false
	pinNumber = 0
	pinValue  = false
	command   = "read"
	commands  = map[string]commandFunc{
		"read":   readPin,
		"write":  writePin,
		"input":  makeInput,
		"output": makeOutput,
		"pullup": enablePullUp,
		"watch":  watchInterrupts,
	}
)

func main() {
	flag.StringVar(&spiPort, "spi", spiPort, "Name of the SPI port (see periph spireg)")
	flag.StringVar(&csName, "cs", csName, "GPIO name of the chip select line")
	flag.StringVar(&intAName, "inta", intAName, "GPIO name of the INTA line (watch command)")
	flag.StringVar(&intBName, "intb", intBName, "GPIO name of the INTB line (watch command)")
	flag.BoolVar(&tied, "tied", tied, "INTA and INTB are tied together on the -inta line")
	flag.IntVar(&pinNumber, "pin", pinNumber, "Pin number (0-15)")
	flag.BoolVar(&pinValue, "value", pinValue, "Value to set for the write command")
	flag.StringVar(&command, "c", command, fmt.Sprintf("Command to execute, one of: %v", commandNames()))
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	golib.Checkerr(doMain())
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func doMain() error {
	commandFunc, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %q, available commands: %v", command, commandNames())
	}
	pin, err := mcp23s17.PinFromNumber(pinNumber)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		return err
	}
	defer port.Close()
	dev, err := openDevice(port)
	if err != nil {
		return err
	}
	defer dev.Close()
	log.Printf("Opened MCP23S17 on %v (chip select %v)", spiPort, csName)
	return commandFunc(dev, pin)
}

func openDevice(port spi.Port) (*mcp23s17.MCP23S17, error) {
	cs := gpioreg.ByName(csName)
	if cs == nil {
		return nil, fmt.Errorf("chip select pin %q not found", csName)
	}
	intA := lookupPin(intAName)
	intB := lookupPin(intBName)
	switch {
	case tied:
		if intA == nil {
			return nil, errors.New("-tied requires the -inta line")
		}
		return mcp23s17.NewWithTiedInterrupts(port, cs, intA)
	case intA != nil && intB != nil:
		return mcp23s17.NewWithInterrupts(port, cs, intA, intB)
	case intA != nil:
		return mcp23s17.NewWithPortAInterrupts(port, cs, intA)
	case intB != nil:
		return mcp23s17.NewWithPortBInterrupts(port, cs, intB)
	default:
		return mcp23s17.NewWithoutInterrupts(port, cs)
	}
}

func lookupPin(name string) gpio.PinIO {
	if name == "" {
		return nil
	}
	return gpioreg.ByName(name)
}

func readPin(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	value, err := dev.PinView(pin).Get()
	if err != nil {
		return err
	}
	log.Printf("%v = %v", pin, value)
	return nil
}

func writePin(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	view := dev.PinView(pin)
	view.SetAsOutput()
	view.SetValue(pinValue)
	if pin.IsPortA() {
		if err := dev.WriteIODIRA(); err != nil {
			return err
		}
		return dev.WriteOLATA()
	}
	if err := dev.WriteIODIRB(); err != nil {
		return err
	}
	return dev.WriteOLATB()
}

func makeInput(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	dev.PinView(pin).SetAsInput()
	if pin.IsPortA() {
		return dev.WriteIODIRA()
	}
	return dev.WriteIODIRB()
}

func makeOutput(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	dev.PinView(pin).SetAsOutput()
	if pin.IsPortA() {
		return dev.WriteIODIRA()
	}
	return dev.WriteIODIRB()
}

func enablePullUp(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	dev.PinView(pin).EnablePullUp()
	if pin.IsPortA() {
		return dev.WriteGPPUA()
	}
	return dev.WriteGPPUB()
}

// watchInterrupts configures the given pin for interrupt-on-change and logs
// all interrupt events until SIGINT.
func watchInterrupts(dev *mcp23s17.MCP23S17, pin mcp23s17.Pin) error {
	view := dev.PinView(pin)
	view.SetAsInput()
	view.EnablePullUp()
	view.EnableInterrupt()
	view.ToInterruptChangeMode()
	commits := []func() error{dev.WriteIODIRA, dev.WriteGPPUA, dev.WriteGPINTENA, dev.WriteINTCONA}
	if pin.IsPortB() {
		commits = []func() error{dev.WriteIODIRB, dev.WriteGPPUB, dev.WriteGPINTENB, dev.WriteINTCONB}
	}
	for _, commit := range commits {
		if err := commit(); err != nil {
			return err
		}
	}

	err := dev.AddGlobalListener(mcp23s17.ListenerFunc(func(capturedValue bool, pin mcp23s17.Pin) {
		log.Printf("Interrupt on %v, captured value %v", pin, capturedValue)
	}))
	if err != nil {
		return err
	}
	log.Printf("Watching interrupts on %v, stop with ctrl-c...", pin)
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	<-interrupted
	return nil
}
