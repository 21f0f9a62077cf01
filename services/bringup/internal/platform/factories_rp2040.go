//go:build rp2040

package platform

import (
	"device/rp"
	"machine"
	"runtime/volatile"
	"unsafe"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// -----------------------------------------------------------------------------
// Defaults used on the Raspberry Pi Pico carrying a GFX Pack
// -----------------------------------------------------------------------------

const (
	consoleBaud = 115200
	gpioCount   = 30 // GPIO0..GPIO29
)

func newPeripherals() *Peripherals {
	return &Peripherals{
		Clocks:   rp2Clocks{},
		Watchdog: rp2Watchdog{},
		Pins:     newRP2PinBank(),
		SPI0:     &rp2SPI{bus: machine.SPI0},
		PWM3:     &rp2PWM{n: 3, grp: machine.PWM3},
		PWM4:     &rp2PWM{n: 4, grp: machine.PWM4},
		Timer:    rp2Timebase{},
		ROSC:     &rp2Entropy{},
		Console:  newConsole(),
	}
}

// newConsole brings up UART0 on ConsoleTX/ConsoleRX for the boot log. The
// pin bank treats both pads as taken.
func newConsole() *uartx.UART {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.Pin(ConsoleTX),
		RX:       machine.Pin(ConsoleRX),
	})
	return u
}

// ---- GPIO ----

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

// ConfigureOutput latches the level before enabling the driver so the pad
// never glitches through the opposite level.
func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Set(initial)
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) ConfigureFunction(fn halcore.Function) error {
	switch fn {
	case halcore.FuncSPI:
		r.p.Configure(machine.PinConfig{Mode: machine.PinSPI})
	case halcore.FuncPWM:
		r.p.Configure(machine.PinConfig{Mode: machine.PinPWM})
	default:
		return errcode.Unsupported
	}
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

type rp2PinBank struct {
	taken [gpioCount]bool
}

// newRP2PinBank marks the console pads as taken before anything can claim
// them.
func newRP2PinBank() *rp2PinBank {
	b := &rp2PinBank{}
	for n := range b.taken {
		_, b.taken[n] = Reserved(n)
	}
	return b
}

func (b *rp2PinBank) Take(n int) (halcore.GPIOPin, error) {
	if n < 0 || n >= gpioCount {
		return nil, errcode.UnknownPin
	}
	if b.taken[n] {
		return nil, errcode.PinInUse
	}
	b.taken[n] = true
	return &rp2Pin{p: machine.Pin(n), n: n}, nil
}

// ---- Clocks ----

// The TinyGo runtime programs XOSC, both PLLs and the clock muxes before main
// runs. rp2Clocks therefore verifies the tree against the requested dividers
// instead of reprogramming a PLL the CPU is clocked from.
type rp2Clocks struct{}

const (
	xoscStatusStable = 1 << 31
	pllCSLock        = 1 << 31
	pllCSRefDivMask  = 0x3F
	pllPrimPD1Pos    = 16
	pllPrimPD2Pos    = 12
	pllPrimPDMask    = 0x7
)

func (rp2Clocks) StartXOSC(hz uint32) error {
	if hz != 12_000_000 {
		return errcode.Unsupported
	}
	if rp.XOSC.STATUS.Get()&xoscStatusStable == 0 {
		return errcode.Wrap(errcode.ClockLockFailure, "xosc", nil)
	}
	return nil
}

func pllRegs(p halcore.PLL) *rp.PLL_SYS_Type {
	if p == halcore.PLLUSB {
		return rp.PLL_USB
	}
	return rp.PLL_SYS
}

func (rp2Clocks) ConfigurePLL(p halcore.PLL, cfg halcore.PLLConfig) error {
	r := pllRegs(p)
	prim := r.PRIM.Get()
	got := halcore.PLLConfig{
		RefDiv:   r.CS.Get() & pllCSRefDivMask,
		FBDiv:    r.FBDIV_INT.Get(),
		PostDiv1: (prim >> pllPrimPD1Pos) & pllPrimPDMask,
		PostDiv2: (prim >> pllPrimPD2Pos) & pllPrimPDMask,
	}
	if got != cfg {
		return &errcode.E{C: errcode.Unsupported, Op: p.String(), Msg: "runtime clock setup differs"}
	}
	return nil
}

func (rp2Clocks) PLLLocked(p halcore.PLL) bool {
	return pllRegs(p).CS.Get()&pllCSLock != 0
}

func (rp2Clocks) SelectSources() error {
	if machine.CPUFrequency() != 125*machine.MHz {
		return &errcode.E{C: errcode.Unsupported, Op: "clk_sys", Msg: "not on pll_sys"}
	}
	return nil
}

type rp2Watchdog struct{}

const watchdogTickEnable = 1 << 9

func (rp2Watchdog) StartTick(cycles uint32) {
	rp.WATCHDOG.TICK.Set(cycles | watchdogTickEnable)
}

// ---- SPI ----

type rp2SPI struct{ bus *machine.SPI }

func (s *rp2SPI) Configure(cfg halcore.SPIConfig) error {
	return s.bus.Configure(machine.SPIConfig{
		Frequency: cfg.Frequency,
		Mode:      cfg.Mode,
		SCK:       machine.Pin(cfg.SCK),
		SDO:       machine.Pin(cfg.SDO),
		SDI:       machine.NoPin, // write-only display link
	})
}

func (s *rp2SPI) Tx(w, r []byte) error { return s.bus.Tx(w, r) }

// ---- PWM ----

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmGroup interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	Get(channel uint8) uint32
	Top() uint32
	Enable(enable bool)
	IsEnabled() bool
}

type rp2PWM struct {
	n   uint8
	grp pwmGroup
}

const (
	pwmSliceStride  = 0x14 // CSR, DIV, CTR, CC, TOP
	pwmCSRPhCorrect = 1 << 1
)

// csr addresses CHn_CSR directly; machine does not export phase-correct mode.
func (p *rp2PWM) csr() *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Add(unsafe.Pointer(rp.PWM), uintptr(p.n)*pwmSliceStride))
}

func (p *rp2PWM) Number() uint8 { return p.n }

func (p *rp2PWM) Configure(periodNs uint64) error {
	return p.grp.Configure(machine.PWMConfig{Period: periodNs})
}

func (p *rp2PWM) SetPhaseCorrect(on bool) {
	if on {
		p.csr().SetBits(pwmCSRPhCorrect)
	} else {
		p.csr().ClearBits(pwmCSRPhCorrect)
	}
}

func (p *rp2PWM) Enable(on bool)  { p.grp.Enable(on) }
func (p *rp2PWM) IsEnabled() bool { return p.grp.IsEnabled() }
func (p *rp2PWM) Top() uint32     { return p.grp.Top() }

func (p *rp2PWM) Channel(pin halcore.GPIOPin) (uint8, error) {
	return p.grp.Channel(machine.Pin(pin.Number()))
}

func (p *rp2PWM) Set(ch uint8, value uint32) { p.grp.Set(ch, value) }
func (p *rp2PWM) Get(ch uint8) uint32        { return p.grp.Get(ch) }

// ---- Timebase ----

// rp2Timebase reads the raw timer words. TIMELR/TIMEHR latch on read, so they
// are avoided; the raw pair is re-read until the high word is stable.
type rp2Timebase struct{}

func (rp2Timebase) Micros() uint64 {
	for {
		hi := rp.TIMER.TIMERAWH.Get()
		lo := rp.TIMER.TIMERAWL.Get()
		if rp.TIMER.TIMERAWH.Get() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

// ---- Entropy ----

type rp2Entropy struct{ enabled bool }

func (e *rp2Entropy) Enable()       { e.enabled = true }
func (e *rp2Entropy) Enabled() bool { return e.enabled }

func (e *rp2Entropy) Uint32() (uint32, error) {
	if !e.enabled {
		return 0, errcode.NotEnabled
	}
	return machine.GetRNG()
}
