//go:build !rp2040

package platform

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"
	"gfxpack-go/x/timex"
)

// Host builds back every capability with an in-memory fake. Tests reach the
// fakes through the exported fields of Host.

// GPIOCount matches the RP2040 user bank (GPIO0..GPIO29).
const GPIOCount = 30

// Journal records hardware side effects in order so tests can check sequencing.
type Journal struct {
	mu     sync.Mutex
	events []string
}

func (j *Journal) add(ev string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.events = append(j.events, ev)
	j.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// Index returns the position of the first event equal to ev, or -1.
func (j *Journal) Index(ev string) int {
	for i, e := range j.Events() {
		if e == ev {
			return i
		}
	}
	return -1
}

// ----------------------------- GPIO ------------------------------------------

// PinMode is the last configuration applied to a FakePin.
type PinMode uint8

const (
	ModeReset PinMode = iota
	ModeInput
	ModeOutput
	ModeFunction
)

// FakePin implements halcore.GPIOPin.
type FakePin struct {
	mu     sync.RWMutex
	number int
	level  bool
	mode   PinMode
	pull   halcore.Pull
	fn     halcore.Function
	writes int
	j      *Journal
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	p.mode, p.pull = ModeInput, pull
	switch pull {
	case halcore.PullUp:
		p.level = true
	case halcore.PullDown:
		p.level = false
	}
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.mode = ModeOutput
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) ConfigureFunction(fn halcore.Function) error {
	p.mu.Lock()
	p.mode, p.fn = ModeFunction, fn
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.writes++
	p.mu.Unlock()
	p.j.add(pinEvent(p.number, level))
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// Drive forces the sensed level without recording a write, as an external
// signal (e.g. a pressed button) would.
func (p *FakePin) Drive(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

// Mode reports the last configuration applied.
func (p *FakePin) Mode() (PinMode, halcore.Pull, halcore.Function) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode, p.pull, p.fn
}

// Writes counts Set calls, including the initial level of ConfigureOutput.
func (p *FakePin) Writes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writes
}

func pinEvent(n int, level bool) string {
	if level {
		return "gpio" + strconv.Itoa(n) + "=1"
	}
	return "gpio" + strconv.Itoa(n) + "=0"
}

// PinEvent is the journal entry written when pin n is driven to level.
func PinEvent(n int, level bool) string { return pinEvent(n, level) }

// HostPinBank hands out FakePins once each. Reserved pads are never handed
// out.
type HostPinBank struct {
	mu    sync.Mutex
	pins  [GPIOCount]*FakePin
	taken [GPIOCount]bool
}

func newHostPinBank(j *Journal) *HostPinBank {
	b := &HostPinBank{}
	for n := range b.pins {
		b.pins[n] = &FakePin{number: n, j: j}
		_, b.taken[n] = Reserved(n)
	}
	return b
}

func (b *HostPinBank) Take(n int) (halcore.GPIOPin, error) {
	if n < 0 || n >= GPIOCount {
		return nil, errcode.UnknownPin
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.taken[n] {
		return nil, errcode.PinInUse
	}
	b.taken[n] = true
	return b.pins[n], nil
}

// Pin exposes the fake behind number n, taken or not.
func (b *HostPinBank) Pin(n int) *FakePin { return b.pins[n] }

// ----------------------------- Clocks ----------------------------------------

// FakeClocks implements halcore.ClockController. A PLL reports lock after
// LockAfter polls unless NeverLock is set.
type FakeClocks struct {
	LockAfter int
	NeverLock bool

	XOSCHz   uint32
	PLL      map[halcore.PLL]halcore.PLLConfig
	Polls    map[halcore.PLL]int
	Selected bool

	j *Journal
}

func (c *FakeClocks) StartXOSC(hz uint32) error {
	c.XOSCHz = hz
	c.j.add("xosc")
	return nil
}

func (c *FakeClocks) ConfigurePLL(p halcore.PLL, cfg halcore.PLLConfig) error {
	c.PLL[p] = cfg
	c.j.add(p.String())
	return nil
}

func (c *FakeClocks) PLLLocked(p halcore.PLL) bool {
	c.Polls[p]++
	if c.NeverLock {
		return false
	}
	return c.Polls[p] > c.LockAfter
}

func (c *FakeClocks) SelectSources() error {
	if c.Selected {
		return errors.New("clock muxes already switched")
	}
	c.Selected = true
	c.j.add("clk_sel")
	return nil
}

// FakeWatchdog implements halcore.Watchdog.
type FakeWatchdog struct{ Cycles uint32 }

func (w *FakeWatchdog) StartTick(cycles uint32) { w.Cycles = cycles }

// ----------------------------- SPI -------------------------------------------

// FakeSPI implements halcore.SPIController. When FailAt is n > 0 the n-th Tx
// (1-based) returns Err.
type FakeSPI struct {
	Config     halcore.SPIConfig
	Configured bool
	Txs        [][]byte
	FailAt     int
	Err        error

	j *Journal
}

func (s *FakeSPI) Configure(cfg halcore.SPIConfig) error {
	s.Config, s.Configured = cfg, true
	s.j.add("spi0.cfg")
	return nil
}

func (s *FakeSPI) Tx(w, r []byte) error {
	s.Txs = append(s.Txs, append([]byte(nil), w...))
	s.j.add("spi0.tx")
	if s.FailAt > 0 && len(s.Txs) == s.FailAt {
		if s.Err == nil {
			return errors.New("spi: fifo stalled")
		}
		return s.Err
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

// ----------------------------- PWM -------------------------------------------

// FakePWMSlice implements halcore.PWMSlice with RP2040 pin-to-slice mapping.
type FakePWMSlice struct {
	num          uint8
	PeriodNs     uint64
	PhaseCorrect bool
	enabled      bool
	top          uint32
	cc           [2]uint32
	Routed       [2]int
}

func newFakePWMSlice(n uint8) *FakePWMSlice {
	return &FakePWMSlice{num: n, top: 0xFFFF, Routed: [2]int{-1, -1}}
}

func (s *FakePWMSlice) Number() uint8 { return s.num }

func (s *FakePWMSlice) Configure(periodNs uint64) error {
	if periodNs == 0 {
		return errcode.InvalidParams
	}
	s.PeriodNs = periodNs
	// Configure resets the counting mode, as the hardware init does.
	s.PhaseCorrect = false
	return nil
}

func (s *FakePWMSlice) SetPhaseCorrect(on bool) { s.PhaseCorrect = on }
func (s *FakePWMSlice) Enable(on bool)          { s.enabled = on }
func (s *FakePWMSlice) IsEnabled() bool         { return s.enabled }
func (s *FakePWMSlice) Top() uint32             { return s.top }

func (s *FakePWMSlice) Channel(pin halcore.GPIOPin) (uint8, error) {
	n := pin.Number()
	if uint8((n>>1)&7) != s.num {
		return 0, errcode.Unsupported
	}
	if err := pin.ConfigureFunction(halcore.FuncPWM); err != nil {
		return 0, err
	}
	ch := uint8(n & 1)
	s.Routed[ch] = n
	return ch, nil
}

func (s *FakePWMSlice) Set(ch uint8, value uint32) {
	if value > s.top {
		value = s.top
	}
	s.cc[ch&1] = value
}

func (s *FakePWMSlice) Get(ch uint8) uint32 { return s.cc[ch&1] }

// ----------------------------- Timebase / entropy ----------------------------

// HostTimebase is a monotonic microsecond counter. Copies share the epoch.
type HostTimebase struct{ epoch time.Time }

func (t HostTimebase) Micros() uint64 { return timex.Micros(time.Since(t.epoch)) }

// FakeEntropy implements halcore.Entropy with a xorshift generator.
type FakeEntropy struct {
	enabled bool
	state   uint32
}

func (e *FakeEntropy) Enable()       { e.enabled = true }
func (e *FakeEntropy) Enabled() bool { return e.enabled }

func (e *FakeEntropy) Uint32() (uint32, error) {
	if !e.enabled {
		return 0, errcode.NotEnabled
	}
	x := e.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	e.state = x
	return x, nil
}

// ----------------------------- Assembly --------------------------------------

// Host groups the fakes behind one Peripherals token.
type Host struct {
	Journal  *Journal
	Bank     *HostPinBank
	Clocks   *FakeClocks
	Watchdog *FakeWatchdog
	SPI0     *FakeSPI
	PWM3     *FakePWMSlice
	PWM4     *FakePWMSlice
	Timer    HostTimebase
	ROSC     *FakeEntropy
}

// NewHost returns a fresh set of fakes. Unlike Take it is not limited to one
// call per process, so every test can own its own board.
func NewHost() *Host {
	j := &Journal{}
	return &Host{
		Journal: j,
		Bank:    newHostPinBank(j),
		Clocks: &FakeClocks{
			PLL:   make(map[halcore.PLL]halcore.PLLConfig),
			Polls: make(map[halcore.PLL]int),
			j:     j,
		},
		Watchdog: &FakeWatchdog{},
		SPI0:     &FakeSPI{j: j},
		PWM3:     newFakePWMSlice(3),
		PWM4:     newFakePWMSlice(4),
		Timer:    HostTimebase{epoch: time.Now()},
		ROSC:     &FakeEntropy{state: 0x2545F491},
	}
}

// Peripherals wraps the fakes in a token.
func (h *Host) Peripherals() *Peripherals {
	return &Peripherals{
		Clocks:   h.Clocks,
		Watchdog: h.Watchdog,
		Pins:     h.Bank,
		SPI0:     h.SPI0,
		PWM3:     h.PWM3,
		PWM4:     h.PWM4,
		Timer:    h.Timer,
		ROSC:     h.ROSC,
		Console:  discard{},
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newPeripherals() *Peripherals { return NewHost().Peripherals() }
