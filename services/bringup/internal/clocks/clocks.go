// Package clocks brings the oscillator and both PLLs from reset to a stable
// clock tree. Anything configured from a derived frequency takes a *Tree, so
// it cannot be built before Init has returned.
package clocks

import (
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"
	"gfxpack-go/x/logx"
	"gfxpack-go/x/mathx"
)

// XOSCHz is the crystal fitted to the Pico.
const XOSCHz = 12_000_000

// DefaultLockPolls bounds each PLL lock wait. The PLLs lock within a few
// hundred microseconds; an exhausted budget means the hardware is broken.
const DefaultLockPolls = 1_000_000

var (
	// SysPLL: 12 MHz / 1 * 125 = 1500 MHz VCO, / 6 / 2 = 125 MHz.
	SysPLL = halcore.PLLConfig{RefDiv: 1, FBDiv: 125, PostDiv1: 6, PostDiv2: 2}
	// USBPLL: 12 MHz / 1 * 40 = 480 MHz VCO, / 5 / 2 = 48 MHz.
	USBPLL = halcore.PLLConfig{RefDiv: 1, FBDiv: 40, PostDiv1: 5, PostDiv2: 2}
)

// Config tunes Init. The zero value uses DefaultLockPolls.
type Config struct {
	LockPolls int
}

// Tree is the derived clock tree. It is immutable once returned.
type Tree struct {
	xosc, ref, sys, peri, usb uint32
}

func (t *Tree) XOSCHz() uint32       { return t.xosc }
func (t *Tree) RefHz() uint32        { return t.ref }
func (t *Tree) SystemHz() uint32     { return t.sys }
func (t *Tree) PeripheralHz() uint32 { return t.peri }
func (t *Tree) USBHz() uint32        { return t.usb }

// Timer binds a raw timebase to the tree. The timer ticks from the watchdog
// tick generator Init starts, so a Timer only exists after the tree does.
func (t *Tree) Timer(src halcore.Timebase) Timer { return Timer{src: src} }

// Timer is a read-only microsecond counter. It is a value type; copies read
// the same hardware counter.
type Timer struct{ src halcore.Timebase }

func (t Timer) Micros() uint64 { return t.src.Micros() }

// PLLOutputHz computes the output of cfg fed from refHz. Invalid dividers
// yield 0.
func PLLOutputHz(refHz uint32, cfg halcore.PLLConfig) uint32 {
	if cfg.RefDiv == 0 || cfg.PostDiv1 == 0 || cfg.PostDiv2 == 0 {
		return 0
	}
	vco := uint64(refHz/cfg.RefDiv) * uint64(cfg.FBDiv)
	return uint32(vco / uint64(cfg.PostDiv1*cfg.PostDiv2))
}

// Init starts the tick generator and crystal, programs both PLLs, waits for
// lock and switches the clock muxes. Any failure is fatal to bring-up.
func Init(ctrl halcore.ClockController, wd halcore.Watchdog, cfg Config, log *logx.Logger) (*Tree, error) {
	polls := cfg.LockPolls
	if polls <= 0 {
		polls = DefaultLockPolls
	}

	// One tick per microsecond from the crystal.
	wd.StartTick(mathx.CeilDiv(uint32(XOSCHz), 1_000_000))

	if err := ctrl.StartXOSC(XOSCHz); err != nil {
		return nil, errcode.Wrap(errcode.ClockLockFailure, "xosc", err)
	}

	for _, p := range []struct {
		id  halcore.PLL
		cfg halcore.PLLConfig
	}{{halcore.PLLSys, SysPLL}, {halcore.PLLUSB, USBPLL}} {
		if err := ctrl.ConfigurePLL(p.id, p.cfg); err != nil {
			return nil, errcode.Wrap(errcode.ClockLockFailure, p.id.String(), err)
		}
		if !waitLock(ctrl, p.id, polls) {
			log.Error("pll never locked", "pll", p.id.String(), "polls", polls)
			return nil, &errcode.E{C: errcode.ClockLockFailure, Op: p.id.String(), Msg: "no lock"}
		}
	}

	if err := ctrl.SelectSources(); err != nil {
		return nil, errcode.Wrap(errcode.ClockLockFailure, "clk_sel", err)
	}

	sys := PLLOutputHz(XOSCHz, SysPLL)
	t := &Tree{
		xosc: XOSCHz,
		ref:  XOSCHz,
		sys:  sys,
		peri: sys,
		usb:  PLLOutputHz(XOSCHz, USBPLL),
	}
	log.Info("clocks ready", "sys_hz", t.sys, "peri_hz", t.peri, "usb_hz", t.usb)
	return t, nil
}

func waitLock(ctrl halcore.ClockController, p halcore.PLL, polls int) bool {
	for i := 0; i < polls; i++ {
		if ctrl.PLLLocked(p) {
			return true
		}
	}
	return false
}
