// Package platform mints the one-per-process peripheral token the bring-up
// core consumes. The concrete capabilities come from build-tagged files:
// factories_rp2040.go on the board, factories_host.go everywhere else.
package platform

import (
	"io"
	"sync/atomic"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"
)

// Peripherals is the singleton register set. Each field is handed to exactly
// one subsystem constructor during bring-up.
type Peripherals struct {
	Clocks   halcore.ClockController
	Watchdog halcore.Watchdog
	Pins     halcore.PinBank
	SPI0     halcore.SPIController
	PWM3     halcore.PWMSlice
	PWM4     halcore.PWMSlice
	Timer    halcore.Timebase
	ROSC     halcore.Entropy

	// Console receives the boot log. Never nil.
	Console io.Writer

	consumed bool
}

// Console pads. UART0 owns them from mint time, so the pin bank never hands
// them out.
const (
	ConsoleTX = 0
	ConsoleRX = 1
)

// Reserved returns the owner name of a pad the platform keeps for itself.
func Reserved(n int) (owner string, ok bool) {
	switch n {
	case ConsoleTX:
		return "console_tx", true
	case ConsoleRX:
		return "console_rx", true
	}
	return "", false
}

var taken atomic.Bool

// Take returns the peripheral token. Only the first call in a process
// succeeds; later calls fail before any register is touched.
func Take() (*Peripherals, error) {
	if !taken.CompareAndSwap(false, true) {
		return nil, errcode.Wrap(errcode.ResourceAlreadyClaimed, "platform.take", nil)
	}
	return newPeripherals(), nil
}

// Consume marks the token as used. A token can be consumed once.
func (p *Peripherals) Consume() error {
	if p == nil {
		return errcode.Wrap(errcode.InvalidParams, "platform.consume", nil)
	}
	if p.consumed {
		return errcode.Wrap(errcode.ResourceAlreadyClaimed, "platform.consume", nil)
	}
	p.consumed = true
	return nil
}
