// Package pinmux assigns each physical GPIO line to exactly one typed role.
//
// The raw bank is consumed piece by piece: a claim takes the pad out of the
// bank, so the role-less pad is no longer obtainable and a second claim of the
// same number fails with errcode.PinInUse. Go cannot forbid the second claim
// at compile time; the board layout is validated once before bring-up and
// this check is the backstop.
package pinmux

import (
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"
)

// Role is the function a claimed line serves.
type Role uint8

const (
	RoleOutput Role = iota + 1
	RoleInputPullUp
	RoleInputPullDown
	RoleBusClock
	RoleBusData
	RolePWM
)

func (r Role) String() string {
	switch r {
	case RoleOutput:
		return "output"
	case RoleInputPullUp:
		return "input_pullup"
	case RoleInputPullDown:
		return "input_pulldown"
	case RoleBusClock:
		return "bus_sck"
	case RoleBusData:
		return "bus_sdo"
	case RolePWM:
		return "pwm"
	default:
		return "none"
	}
}

// BusLine selects which serial-bus signal a bus-function pin carries.
type BusLine uint8

const (
	BusClock BusLine = iota
	BusData
)

// Claim is one entry of the claim log.
type Claim struct {
	Pin  int
	Role Role
}

// Mux owns the pin bank for the duration of bring-up.
type Mux struct {
	bank   halcore.PinBank
	claims []Claim
}

func New(bank halcore.PinBank) *Mux {
	return &Mux{bank: bank}
}

// Claims returns the claim log in claim order.
func (m *Mux) Claims() []Claim {
	return append([]Claim(nil), m.claims...)
}

func (m *Mux) take(n int, role Role) (halcore.GPIOPin, error) {
	p, err := m.bank.Take(n)
	if err != nil {
		return nil, &errcode.E{C: errcode.Of(err), Op: "pinmux.claim", Msg: role.String(), Err: err}
	}
	m.claims = append(m.claims, Claim{Pin: n, Role: role})
	return p, nil
}

// Output claims n as a push-pull output driven to initial.
func (m *Mux) Output(n int, initial bool) (*Output, error) {
	p, err := m.take(n, RoleOutput)
	if err != nil {
		return nil, err
	}
	if err := p.ConfigureOutput(initial); err != nil {
		return nil, err
	}
	return &Output{p: p}, nil
}

// InputPullUp claims n as a digital input with the pull-up enabled.
func (m *Mux) InputPullUp(n int) (*Input, error) {
	return m.input(n, RoleInputPullUp, halcore.PullUp)
}

// InputPullDown claims n as a digital input with the pull-down enabled.
func (m *Mux) InputPullDown(n int) (*Input, error) {
	return m.input(n, RoleInputPullDown, halcore.PullDown)
}

func (m *Mux) input(n int, role Role, pull halcore.Pull) (*Input, error) {
	p, err := m.take(n, role)
	if err != nil {
		return nil, err
	}
	if err := p.ConfigureInput(pull); err != nil {
		return nil, err
	}
	return &Input{p: p}, nil
}

// BusFunction claims n for the serial bus as the given line.
func (m *Mux) BusFunction(n int, line BusLine) (*BusPin, error) {
	role := RoleBusClock
	if line == BusData {
		role = RoleBusData
	}
	p, err := m.take(n, role)
	if err != nil {
		return nil, err
	}
	if err := p.ConfigureFunction(halcore.FuncSPI); err != nil {
		return nil, err
	}
	return &BusPin{n: n, line: line}, nil
}

// PWMFunction claims n for PWM. The pad is switched to the PWM function when
// a slice routes a channel to it.
func (m *Mux) PWMFunction(n int) (*PWMPin, error) {
	p, err := m.take(n, RolePWM)
	if err != nil {
		return nil, err
	}
	return &PWMPin{p: p}, nil
}

// ---- typed handles ----

// Output is a claimed push-pull output.
type Output struct{ p halcore.GPIOPin }

func (o *Output) Number() int    { return o.p.Number() }
func (o *Output) Set(level bool) { o.p.Set(level) }
func (o *Output) High()          { o.p.Set(true) }
func (o *Output) Low()           { o.p.Set(false) }
func (o *Output) Get() bool      { return o.p.Get() }

// Input is a claimed digital input.
type Input struct{ p halcore.GPIOPin }

func (i *Input) Number() int { return i.p.Number() }
func (i *Input) Get() bool   { return i.p.Get() }

// BusPin is a line handed to the SPI peripheral. It has no level accessors.
type BusPin struct {
	n    int
	line BusLine
}

func (b *BusPin) Number() int   { return b.n }
func (b *BusPin) Line() BusLine { return b.line }

// PWMPin is a line reserved for a PWM channel.
type PWMPin struct{ p halcore.GPIOPin }

func (p *PWMPin) Number() int { return p.p.Number() }

// Pad returns the underlying pad for routing by a PWM slice.
func (p *PWMPin) Pad() halcore.GPIOPin { return p.p }
