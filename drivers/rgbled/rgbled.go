// Package rgbled groups three PWM channels into one RGB sink. Values are raw
// duty counts in [0, MaxDuty] per channel; there is no colour-space or gamma
// mapping here.
package rgbled

import "gfxpack-go/x/mathx"

// Channel is one PWM output.
type Channel interface {
	SetDuty(v uint32)
	Duty() uint32
	MaxDuty() uint32
}

type RGB struct {
	r, g, b Channel
}

func New(r, g, b Channel) *RGB {
	return &RGB{r: r, g: g, b: b}
}

// Set writes all three duties. Values above a channel's MaxDuty saturate.
func (l *RGB) Set(r, g, b uint32) {
	set(l.r, r)
	set(l.g, g)
	set(l.b, b)
}

func (l *RGB) SetRed(v uint32)   { set(l.r, v) }
func (l *RGB) SetGreen(v uint32) { set(l.g, v) }
func (l *RGB) SetBlue(v uint32)  { set(l.b, v) }

// Off drives all channels to zero duty.
func (l *RGB) Off() { l.Set(0, 0, 0) }

// Duty returns the current raw duties.
func (l *RGB) Duty() (r, g, b uint32) {
	return l.r.Duty(), l.g.Duty(), l.b.Duty()
}

// Channels exposes the individual channels.
func (l *RGB) Channels() (r, g, b Channel) { return l.r, l.g, l.b }

func set(ch Channel, v uint32) {
	ch.SetDuty(mathx.Min(v, ch.MaxDuty()))
}
