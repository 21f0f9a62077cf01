// Package heartbeat is the demo application run after bring-up. It polls the
// five buttons, drives the RGB backlight from them and logs a heartbeat.
//
// Mapping: A, B and C toggle the red, green and blue channels; D sets all
// three to full; E switches everything off.
package heartbeat

import (
	"context"
	"time"

	"gfxpack-go/drivers/button"
	"gfxpack-go/drivers/rgbled"
	"gfxpack-go/x/logx"
)

const (
	DefaultPoll     = 10 * time.Millisecond
	DefaultInterval = 1 * time.Second
)

type Clock interface {
	Micros() uint64
}

type Service struct {
	Buttons [5]*button.Button
	RGB     *rgbled.RGB
	Clock   Clock
	Log     *logx.Logger

	// Poll is the button sampling period, Interval the heartbeat period.
	// Zero means the defaults.
	Poll     time.Duration
	Interval time.Duration

	beats    uint32
	lastBeat uint64
	started  bool
}

var names = [5]string{"a", "b", "c", "d", "e"}

// Step polls every button once and applies the resulting events. It also
// emits a heartbeat line when Interval has passed since the previous one.
// It returns the number of press events handled.
func (s *Service) Step() int {
	n := 0
	for i, b := range s.Buttons {
		if b == nil {
			continue
		}
		switch b.Poll() {
		case button.Pressed:
			n++
			s.press(i)
			s.Log.Info("button", "id", names[i], "state", "pressed")
		case button.Released:
			s.Log.Info("button", "id", names[i], "state", "released")
		}
	}

	now := s.Clock.Micros()
	iv := uint64(s.interval() / time.Microsecond)
	if !s.started || now-s.lastBeat >= iv {
		s.started = true
		s.lastBeat = now
		s.beats++
		r, g, b := s.RGB.Duty()
		s.Log.Info("heartbeat", "n", s.beats, "uptime_us", now, "r", r, "g", g, "b", b)
	}
	return n
}

func (s *Service) press(i int) {
	r, g, b := s.RGB.Channels()
	switch i {
	case 0:
		toggle(r)
	case 1:
		toggle(g)
	case 2:
		toggle(b)
	case 3:
		s.RGB.Set(r.MaxDuty(), g.MaxDuty(), b.MaxDuty())
	case 4:
		s.RGB.Off()
	}
}

func toggle(ch rgbled.Channel) {
	if ch.Duty() == 0 {
		ch.SetDuty(ch.MaxDuty())
		return
	}
	ch.SetDuty(0)
}

// Beats returns the number of heartbeat lines emitted so far.
func (s *Service) Beats() uint32 { return s.beats }

func (s *Service) interval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return DefaultInterval
}

// Run calls Step every Poll until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	poll := s.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	s.Log.Info("start", "poll_us", uint64(poll/time.Microsecond))
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("stopping")
			return ctx.Err()
		case <-tick.C:
			s.Step()
		}
	}
}
