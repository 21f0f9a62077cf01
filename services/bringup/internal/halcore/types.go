// Package halcore defines the register-level capabilities the bring-up core
// consumes. Implementations live in the platform package: machine/device-rp
// backed on rp2040, in-memory fakes on host builds.
package halcore

// ---- GPIO ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Function selects a non-SIO pad function.
type Function uint8

const (
	FuncSPI Function = iota + 1
	FuncPWM
)

// GPIOPin is a raw pad. It carries no role until configured.
type GPIOPin interface {
	Number() int
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	ConfigureFunction(fn Function) error
	Set(level bool)
	Get() bool
}

// PinBank hands out raw pads. Take removes the pad from the bank: a second
// Take of the same number fails, so a raw pad can have one owner only.
type PinBank interface {
	Take(n int) (GPIOPin, error)
}

// ---- Clocks ----

type PLL uint8

const (
	PLLSys PLL = iota
	PLLUSB
)

func (p PLL) String() string {
	if p == PLLUSB {
		return "pll_usb"
	}
	return "pll_sys"
}

// PLLConfig is a divider/multiplier set: out = ref/RefDiv*FBDiv/(PostDiv1*PostDiv2).
type PLLConfig struct {
	RefDiv   uint32
	FBDiv    uint32
	PostDiv1 uint32
	PostDiv2 uint32
}

// ClockController is the raw clock-control register set (XOSC, PLLs, muxes).
type ClockController interface {
	StartXOSC(hz uint32) error
	ConfigurePLL(p PLL, cfg PLLConfig) error
	PLLLocked(p PLL) bool
	// SelectSources routes clk_sys/clk_peri to PLL_SYS and clk_usb to PLL_USB.
	SelectSources() error
}

// Watchdog is used only to start the tick generator the lock wait depends on.
type Watchdog interface {
	StartTick(cycles uint32)
}

// ---- SPI ----

// SPIConfig mirrors the controller registers. Mode is 0..3 (CPOL<<1 | CPHA).
type SPIConfig struct {
	Frequency uint32
	Mode      uint8
	SCK, SDO  int
}

// SPIController is one SPI peripheral instance.
type SPIController interface {
	Configure(cfg SPIConfig) error
	Tx(w, r []byte) error
}

// ---- PWM ----

// PWMSlice is one PWM counter with two channels (0 => A, 1 => B).
type PWMSlice interface {
	Number() uint8
	Configure(periodNs uint64) error
	SetPhaseCorrect(on bool)
	Enable(on bool)
	IsEnabled() bool
	Top() uint32
	// Channel routes the pad to this slice and returns its channel index.
	Channel(pin GPIOPin) (uint8, error)
	Set(ch uint8, value uint32)
	Get(ch uint8) uint32
}

// ---- Timebase ----

// Timebase is a free-running microsecond counter. Reading it must have no
// side effects so copies can be shared between handles.
type Timebase interface {
	Micros() uint64
}

// ---- Entropy ----

// Entropy is the ring-oscillator random source. It starts disabled.
type Entropy interface {
	Enable()
	Enabled() bool
	Uint32() (uint32, error)
}
