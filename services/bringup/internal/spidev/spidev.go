// Package spidev configures the serial bus and binds it to a single
// chip-select line. The resulting ExclusiveDevice is the only way to
// transact on the bus.
package spidev

import (
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/clocks"
	"gfxpack-go/services/bringup/internal/halcore"
	"gfxpack-go/services/bringup/internal/pinmux"

	"tinygo.org/x/drivers"
)

// Ensure compile-time conformance with drivers.SPI.
var _ drivers.SPI = (*ExclusiveDevice)(nil)

type Polarity uint8

const (
	IdleLow Polarity = iota
	IdleHigh
)

type Phase uint8

const (
	CaptureOnFirstTransition Phase = iota
	CaptureOnSecondTransition
)

// Mode is the clock polarity and phase of a transaction.
type Mode struct {
	Polarity Polarity
	Phase    Phase
}

// Number returns the conventional SPI mode number (CPOL<<1 | CPHA).
func (m Mode) Number() uint8 { return uint8(m.Polarity)<<1 | uint8(m.Phase) }

// Bus is a configured SPI peripheral. It is bound to at most one device.
type Bus struct {
	ctrl   halcore.SPIController
	name   string
	sck    *pinmux.BusPin
	sdo    *pinmux.BusPin
	mode   Mode
	rateHz uint32
	bound  bool
}

func (b *Bus) Mode() Mode     { return b.mode }
func (b *Bus) RateHz() uint32 { return b.rateHz }

// Configure programs ctrl for mode at rateHz. The pins must already carry the
// bus-function role for the matching lines. The rate is bounded by half the
// peripheral clock, the fastest the controller can divide down to.
func Configure(ctrl halcore.SPIController, name string, sck, sdo *pinmux.BusPin, mode Mode, rateHz uint32, tree *clocks.Tree) (*Bus, error) {
	const op = "spidev.configure"
	if ctrl == nil || sck == nil || sdo == nil || tree == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "missing resource"}
	}
	if sck.Line() != pinmux.BusClock || sdo.Line() != pinmux.BusData {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "pins swapped"}
	}
	if rateHz == 0 || rateHz > tree.PeripheralHz()/2 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "rate out of range"}
	}
	if mode.Polarity > IdleHigh || mode.Phase > CaptureOnSecondTransition {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "bad mode"}
	}
	err := ctrl.Configure(halcore.SPIConfig{
		Frequency: rateHz,
		Mode:      mode.Number(),
		SCK:       sck.Number(),
		SDO:       sdo.Number(),
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.BusTransactionFailure, op, err)
	}
	return &Bus{ctrl: ctrl, name: name, sck: sck, sdo: sdo, mode: mode, rateHz: rateHz}, nil
}

// ExclusiveDevice pairs a bus with its chip-select. Every Tx asserts the
// select on entry and releases it on exit. There is no locking: exactly one
// transaction is in flight because the device has exactly one owner.
type ExclusiveDevice struct {
	bus *Bus
	cs  *pinmux.Output
	op  string
}

// NewExclusiveDevice binds bus to cs. The select is driven to its idle (high)
// level before the device is returned. A bus can be bound once.
func NewExclusiveDevice(bus *Bus, cs *pinmux.Output) (*ExclusiveDevice, error) {
	if bus == nil || cs == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "spidev.bind"}
	}
	if bus.bound {
		return nil, &errcode.E{C: errcode.BusInUse, Op: "spidev.bind", Msg: bus.name}
	}
	bus.bound = true
	cs.High()
	return &ExclusiveDevice{bus: bus, cs: cs, op: bus.name + ".tx"}, nil
}

// Tx performs one full-duplex transaction with the select asserted.
func (d *ExclusiveDevice) Tx(w, r []byte) error {
	d.cs.Low()
	err := d.bus.ctrl.Tx(w, r)
	d.cs.High()
	if err != nil {
		return errcode.Wrap(errcode.BusTransactionFailure, d.op, err)
	}
	return nil
}

// Transfer writes one byte and returns the byte clocked in.
func (d *ExclusiveDevice) Transfer(b byte) (byte, error) {
	var r [1]byte
	if err := d.Tx([]byte{b}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// ChipSelect reports the select pin number.
func (d *ExclusiveDevice) ChipSelect() int { return d.cs.Number() }

// Bus returns the bound bus for inspection.
func (d *ExclusiveDevice) Bus() *Bus { return d.bus }
