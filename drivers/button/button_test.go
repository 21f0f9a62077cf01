package button

import (
	"testing"
	"time"
)

type linePin struct{ level bool }

func (p *linePin) Get() bool { return p.level }

type manualClock struct{ us uint64 }

func (c *manualClock) Micros() uint64 { return c.us }

func (c *manualClock) advance(d time.Duration) { c.us += uint64(d / time.Microsecond) }

func TestDebouncedPressRelease(t *testing.T) {
	pin := &linePin{level: true} // pulled up, released
	clk := &manualClock{}
	b := New(pin, clk)

	if ev := b.Poll(); ev != None || b.IsPressed() {
		t.Fatalf("idle poll = %v", ev)
	}

	pin.level = false
	if ev := b.Poll(); ev != None {
		t.Fatalf("edge accepted without debounce: %v", ev)
	}
	clk.advance(5 * time.Millisecond)
	pin.level = true // bounce
	if ev := b.Poll(); ev != None {
		t.Fatalf("bounce produced %v", ev)
	}
	pin.level = false
	b.Poll()
	clk.advance(DefaultDebounce)
	if ev := b.Poll(); ev != Pressed || !b.IsPressed() {
		t.Fatalf("press not reported: %v", ev)
	}
	if ev := b.Poll(); ev != None {
		t.Fatalf("press reported twice: %v", ev)
	}

	clk.advance(300 * time.Millisecond)
	if got := b.HeldFor(); got != 300*time.Millisecond {
		t.Fatalf("HeldFor = %v", got)
	}

	pin.level = true
	b.Poll()
	clk.advance(DefaultDebounce)
	if ev := b.Poll(); ev != Released || b.IsPressed() || b.HeldFor() != 0 {
		t.Fatalf("release not reported: %v", ev)
	}
}

func TestZeroDebounce(t *testing.T) {
	pin := &linePin{level: true}
	b := New(pin, &manualClock{})
	b.SetDebounce(0)
	pin.level = false
	if ev := b.Poll(); ev != Pressed {
		t.Fatalf("got %v", ev)
	}
	b.SetDebounce(-time.Second)
	pin.level = true
	if ev := b.Poll(); ev != Released {
		t.Fatalf("got %v", ev)
	}
}

func TestEventString(t *testing.T) {
	if Pressed.String() != "pressed" || Released.String() != "released" || None.String() != "none" {
		t.Fatal("event names changed")
	}
}

func TestSharedTimebase(t *testing.T) {
	clk := &manualClock{us: 42}
	a, b := New(&linePin{}, clk), New(&linePin{}, clk)
	if a.Timebase() != b.Timebase() || a.Now() != 42 || b.Now() != 42 {
		t.Fatal("buttons do not share the timebase")
	}
}
