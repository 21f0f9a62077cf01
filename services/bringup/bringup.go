// Package bringup takes the board from reset to a ResourceBundle, once.
//
// Order of construction:
//
//	clocks -> pins -> SPI bus + chip-select -> display (backlight off, init)
//	       -> PWM slices -> RGB sink
//	       -> timebase -> buttons
//
// Every step either succeeds or aborts the whole sequence; a partial Bundle is
// never returned. Constructors that depend on a derived frequency take the
// clock tree, so they cannot run before it exists.
package bringup

import (
	"io"

	"gfxpack-go/drivers/button"
	"gfxpack-go/drivers/rgbled"
	"gfxpack-go/drivers/st7567"
	"gfxpack-go/services/bringup/internal/buttons"
	"gfxpack-go/services/bringup/internal/clocks"
	"gfxpack-go/services/bringup/internal/display"
	"gfxpack-go/services/bringup/internal/pinmux"
	"gfxpack-go/services/bringup/internal/platform"
	"gfxpack-go/services/bringup/internal/rgbpwm"
	"gfxpack-go/services/bringup/internal/spidev"
	"gfxpack-go/x/logx"
)

// BacklightStatus is re-exported for callers that only import bringup.
type BacklightStatus = st7567.BacklightStatus

const (
	BacklightOff = st7567.BacklightOff
	BacklightOn  = st7567.BacklightOn
)

// Timebase is the shared monotonic microsecond counter.
type Timebase interface {
	Micros() uint64
}

// Entropy is the ring-oscillator noise source, handed over disabled.
type Entropy interface {
	Enable()
	Enabled() bool
	Uint32() (uint32, error)
}

// Clocks summarises the derived clock tree.
type Clocks struct {
	XOSCHz       uint32
	SystemHz     uint32
	PeripheralHz uint32
	USBHz        uint32
}

// Claim records one pin assignment made during bring-up.
type Claim struct {
	Pin  int
	Role string
}

// Config controls bring-up. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Layout  Layout
	Clocks  clocks.Config
	Display st7567.Config
	// Log receives the boot log. Nil means the platform console.
	Log io.Writer
}

func DefaultConfig() Config {
	return Config{Layout: DefaultLayout(), Display: st7567.DefaultConfig()}
}

// Bundle owns every handle produced by bring-up. Ownership passes to the
// caller; nothing here locks, so sharing handles between execution contexts
// is the caller's to serialise.
type Bundle struct {
	Display *st7567.Device

	ButtonA *button.Button
	ButtonB *button.Button
	ButtonC *button.Button
	ButtonD *button.Button
	ButtonE *button.Button

	RGB   *rgbled.RGB
	Delay Timebase
	ROSC  Entropy

	Clocks Clocks

	claims []Claim
}

// Buttons returns the five handles in A..E order.
func (b *Bundle) Buttons() [buttons.Count]*button.Button {
	return [buttons.Count]*button.Button{b.ButtonA, b.ButtonB, b.ButtonC, b.ButtonD, b.ButtonE}
}

// Claims returns the pin claims in the order they were made.
func (b *Bundle) Claims() []Claim {
	return append([]Claim(nil), b.claims...)
}

// Start takes the process-wide peripheral token, points logx.Output at the
// platform console and runs New. A second call fails before any hardware is
// touched.
func Start(cfg Config) (*Bundle, error) {
	p, err := platform.Take()
	if err != nil {
		return nil, err
	}
	logx.Output = p.Console
	return New(p, cfg)
}

// New consumes p and brings the board up. Any error is fatal: the caller must
// not use the hardware afterwards.
func New(p *platform.Peripherals, cfg Config) (*Bundle, error) {
	if err := p.Consume(); err != nil {
		return nil, err
	}
	l := cfg.Layout
	if err := l.Validate(); err != nil {
		return nil, err
	}
	w := cfg.Log
	if w == nil {
		w = p.Console
	}
	log := logx.New(w, "bringup")

	// Clocks first: the bus, PWM and timebase all derive from them.
	tree, err := clocks.Init(p.Clocks, p.Watchdog, cfg.Clocks, log.With("clocks"))
	if err != nil {
		return nil, err
	}

	mux := pinmux.New(p.Pins)

	dev, err := bindBus(p, mux, l, tree)
	if err != nil {
		log.Error("spi bind failed", "err", err)
		return nil, err
	}
	log.Info("spi ready", "mode", logx.Hex(l.SPIMode), "hz", l.SPIRateHz, "cs", dev.ChipSelect())

	// Backlight claimed low; display.Init forces it off again before init.
	var dp display.Pins
	if dp.DC, err = mux.Output(l.DC, false); err != nil {
		return nil, err
	}
	if dp.Backlight, err = mux.Output(l.Backlight, false); err != nil {
		return nil, err
	}
	if dp.Reset, err = mux.Output(l.Reset, true); err != nil {
		return nil, err
	}
	lcd, err := display.Bind(dev, dp, cfg.Display, log.With("display"))
	if err != nil {
		return nil, err
	}

	var rp rgbpwm.Pins
	if rp.Red, err = mux.PWMFunction(l.Red); err != nil {
		return nil, err
	}
	if rp.Green, err = mux.PWMFunction(l.Green); err != nil {
		return nil, err
	}
	if rp.Blue, err = mux.PWMFunction(l.Blue); err != nil {
		return nil, err
	}
	rgb, err := rgbpwm.Configure(p.PWM3, p.PWM4, rp, rgbpwm.Config{FreqHz: l.PWMFreqHz}, tree, log.With("rgb"))
	if err != nil {
		return nil, err
	}

	timer := tree.Timer(p.Timer)
	btns, err := buttons.Configure(mux, timer, l.Buttons, log.With("buttons"))
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Display: lcd,
		ButtonA: btns[0],
		ButtonB: btns[1],
		ButtonC: btns[2],
		ButtonD: btns[3],
		ButtonE: btns[4],
		RGB:     rgb,
		Delay:   timer,
		ROSC:    p.ROSC,
		Clocks: Clocks{
			XOSCHz:       tree.XOSCHz(),
			SystemHz:     tree.SystemHz(),
			PeripheralHz: tree.PeripheralHz(),
			USBHz:        tree.USBHz(),
		},
	}
	for _, c := range mux.Claims() {
		b.claims = append(b.claims, Claim{Pin: c.Pin, Role: c.Role.String()})
	}
	log.Info("ready", "claims", len(b.claims))
	return b, nil
}

// bindBus claims the select and bus pins, configures SPI0 and binds the
// exclusive device. The select is claimed idle-high before the bus exists.
func bindBus(p *platform.Peripherals, mux *pinmux.Mux, l Layout, tree *clocks.Tree) (*spidev.ExclusiveDevice, error) {
	cs, err := mux.Output(l.ChipSelect, true)
	if err != nil {
		return nil, err
	}
	sck, err := mux.BusFunction(l.SCK, pinmux.BusClock)
	if err != nil {
		return nil, err
	}
	sdo, err := mux.BusFunction(l.MOSI, pinmux.BusData)
	if err != nil {
		return nil, err
	}
	bus, err := spidev.Configure(p.SPI0, "spi0", sck, sdo, modeOf(l.SPIMode), l.SPIRateHz, tree)
	if err != nil {
		return nil, err
	}
	return spidev.NewExclusiveDevice(bus, cs)
}

func modeOf(n uint8) spidev.Mode {
	return spidev.Mode{Polarity: spidev.Polarity(n >> 1 & 1), Phase: spidev.Phase(n & 1)}
}
