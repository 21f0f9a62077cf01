// Package rgbpwm allocates the two PWM counters behind the RGB backlight and
// exposes their three routed channels as one rgbled sink.
package rgbpwm

import (
	"gfxpack-go/drivers/rgbled"
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/clocks"
	"gfxpack-go/services/bringup/internal/halcore"
	"gfxpack-go/services/bringup/internal/pinmux"
	"gfxpack-go/x/logx"
	"gfxpack-go/x/timex"
)

// Pins are the red, green and blue outputs, claimed for PWM. Red and green
// share the first slice; blue is on the second.
type Pins struct {
	Red, Green, Blue *pinmux.PWMPin
}

// Config sets the counter frequency. Phase-correct counting halves the
// output frequency, so 2 kHz configured gives roughly 1 kHz at the LED.
type Config struct {
	FreqHz uint32
}

// DefaultFreqHz is used when Config.FreqHz is zero.
const DefaultFreqHz = 2000

// Channel is one routed PWM output.
type Channel struct {
	slice halcore.PWMSlice
	ch    uint8
	pin   int
}

var _ rgbled.Channel = (*Channel)(nil)

func (c *Channel) SetDuty(v uint32) { c.slice.Set(c.ch, v) }
func (c *Channel) Duty() uint32     { return c.slice.Get(c.ch) }
func (c *Channel) MaxDuty() uint32  { return c.slice.Top() }

// Pin reports the output line number.
func (c *Channel) Pin() int { return c.pin }

// Slice reports the counter number and channel letter ('A' or 'B').
func (c *Channel) Slice() (uint8, rune) {
	if c.ch == 1 {
		return c.slice.Number(), 'B'
	}
	return c.slice.Number(), 'A'
}

// Configure sets both counters to phase-correct mode, enables them and routes
// one channel per pin. No duty is written; the hardware reset value (off)
// stands until the application sets a colour.
func Configure(first, second halcore.PWMSlice, pins Pins, cfg Config, tree *clocks.Tree, log *logx.Logger) (*rgbled.RGB, error) {
	const op = "rgbpwm.configure"
	if first == nil || second == nil || tree == nil || pins.Red == nil || pins.Green == nil || pins.Blue == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "missing resource"}
	}
	if first.Number() == second.Number() {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "slices must differ"}
	}
	freq := cfg.FreqHz
	if freq == 0 {
		freq = DefaultFreqHz
	}
	if freq > tree.SystemHz()/2 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "frequency out of range"}
	}
	period := timex.PeriodFromHz(freq)

	for _, s := range []halcore.PWMSlice{first, second} {
		if err := s.Configure(period); err != nil {
			return nil, errcode.Wrap(errcode.Of(err), op, err)
		}
		// Configure resets the counting mode; phase-correct must come after.
		s.SetPhaseCorrect(true)
		s.Enable(true)
	}

	r, err := route(first, pins.Red)
	if err != nil {
		return nil, err
	}
	g, err := route(first, pins.Green)
	if err != nil {
		return nil, err
	}
	b, err := route(second, pins.Blue)
	if err != nil {
		return nil, err
	}
	if r.ch == g.ch {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "red and green on one channel"}
	}
	log.Info("rgb ready", "freq_hz", freq, "top", first.Top())
	return rgbled.New(r, g, b), nil
}

func route(s halcore.PWMSlice, p *pinmux.PWMPin) (*Channel, error) {
	ch, err := s.Channel(p.Pad())
	if err != nil {
		return nil, &errcode.E{C: errcode.Of(err), Op: "rgbpwm.route", Msg: "pin not on slice", Err: err}
	}
	return &Channel{slice: s, ch: ch, pin: p.Number()}, nil
}
