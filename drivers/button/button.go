// Package button debounces a momentary switch wired to a pulled-up input and
// reports press/release edges. Time comes from a shared read-only timebase.
package button

import "time"

// DefaultDebounce is the time a level must hold before it is accepted.
const DefaultDebounce = 20 * time.Millisecond

// Pin is a digital input.
type Pin interface {
	Get() bool
}

// Timebase is a monotonic microsecond counter.
type Timebase interface {
	Micros() uint64
}

// Event is the result of a Poll.
type Event uint8

const (
	None Event = iota
	Pressed
	Released
)

func (e Event) String() string {
	switch e {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return "none"
	}
}

// Button is one debounced switch. Pressed means the line reads low.
type Button struct {
	pin      Pin
	tb       Timebase
	debounce uint64 // µs

	stable    bool // accepted state (true => pressed)
	candidate bool
	since     uint64
	pressedAt uint64
}

func New(pin Pin, tb Timebase) *Button {
	return &Button{
		pin:      pin,
		tb:       tb,
		debounce: uint64(DefaultDebounce / time.Microsecond),
	}
}

// SetDebounce changes the debounce window. Zero accepts every change on the
// next Poll.
func (b *Button) SetDebounce(d time.Duration) {
	if d < 0 {
		d = 0
	}
	b.debounce = uint64(d / time.Microsecond)
}

// Poll samples the line and returns an edge once the new level has held for
// the debounce window.
func (b *Button) Poll() Event {
	now := b.tb.Micros()
	level := !b.pin.Get()
	if level != b.candidate {
		b.candidate = level
		b.since = now
		if b.debounce != 0 {
			return None
		}
	}
	if b.candidate == b.stable || now-b.since < b.debounce {
		return None
	}
	b.stable = b.candidate
	if b.stable {
		b.pressedAt = now
		return Pressed
	}
	return Released
}

// IsPressed reports the debounced state as of the last Poll.
func (b *Button) IsPressed() bool { return b.stable }

// HeldFor reports how long the button has been pressed, or 0.
func (b *Button) HeldFor() time.Duration {
	if !b.stable {
		return 0
	}
	return time.Duration(b.tb.Micros()-b.pressedAt) * time.Microsecond
}

// Now reads the shared timebase.
func (b *Button) Now() uint64 { return b.tb.Micros() }

// Timebase returns the timebase the button was built with.
func (b *Button) Timebase() Timebase { return b.tb }
