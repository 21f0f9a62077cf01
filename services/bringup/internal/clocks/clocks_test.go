package clocks

import (
	"testing"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/halcore"
	"gfxpack-go/services/bringup/internal/platform"
)

func TestInitDerivesTree(t *testing.T) {
	h := platform.NewHost()
	h.Clocks.LockAfter = 3

	tree, err := Init(h.Clocks, h.Watchdog, Config{}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if tree.SystemHz() != 125_000_000 || tree.PeripheralHz() != 125_000_000 {
		t.Fatalf("sys/peri = %d/%d", tree.SystemHz(), tree.PeripheralHz())
	}
	if tree.USBHz() != 48_000_000 || tree.RefHz() != XOSCHz || tree.XOSCHz() != XOSCHz {
		t.Fatalf("usb/ref = %d/%d", tree.USBHz(), tree.RefHz())
	}
	if h.Watchdog.Cycles != 12 {
		t.Fatalf("watchdog tick cycles = %d", h.Watchdog.Cycles)
	}
	if h.Clocks.PLL[halcore.PLLSys] != SysPLL || h.Clocks.PLL[halcore.PLLUSB] != USBPLL {
		t.Fatalf("PLL config = %+v", h.Clocks.PLL)
	}
	if !h.Clocks.Selected {
		t.Fatal("clock muxes not switched")
	}
}

func TestInitOrdering(t *testing.T) {
	h := platform.NewHost()
	if _, err := Init(h.Clocks, h.Watchdog, Config{}, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ev := h.Journal.Events()
	want := []string{"xosc", "pll_sys", "pll_usb", "clk_sel"}
	if len(ev) != len(want) {
		t.Fatalf("events %v", ev)
	}
	for i := range want {
		if ev[i] != want[i] {
			t.Fatalf("event %d = %q want %q", i, ev[i], want[i])
		}
	}
}

func TestInitLockFailureIsFatal(t *testing.T) {
	h := platform.NewHost()
	h.Clocks.NeverLock = true

	tree, err := Init(h.Clocks, h.Watchdog, Config{LockPolls: 50}, nil)
	if tree != nil {
		t.Fatal("tree returned despite lock failure")
	}
	if errcode.Of(err) != errcode.ClockLockFailure {
		t.Fatalf("err = %v", err)
	}
	if h.Clocks.Polls[halcore.PLLSys] != 50 {
		t.Fatalf("polls = %d", h.Clocks.Polls[halcore.PLLSys])
	}
	// No fallback: the USB PLL is never attempted and the muxes stay put.
	if _, ok := h.Clocks.PLL[halcore.PLLUSB]; ok || h.Clocks.Selected {
		t.Fatal("bring-up continued past a lock failure")
	}
}

func TestPLLOutputHz(t *testing.T) {
	if got := PLLOutputHz(XOSCHz, SysPLL); got != 125_000_000 {
		t.Fatalf("sys = %d", got)
	}
	if got := PLLOutputHz(XOSCHz, USBPLL); got != 48_000_000 {
		t.Fatalf("usb = %d", got)
	}
	if PLLOutputHz(XOSCHz, halcore.PLLConfig{FBDiv: 100}) != 0 {
		t.Fatal("zero dividers must yield 0")
	}
}

func TestTimerCopiesShareCounter(t *testing.T) {
	h := platform.NewHost()
	tree, _ := Init(h.Clocks, h.Watchdog, Config{}, nil)
	a := tree.Timer(h.Timer)
	b := a
	first := a.Micros()
	second := b.Micros()
	if second < first {
		t.Fatalf("timer went backwards: %d then %d", first, second)
	}
}
