package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestMonitorReady(t *testing.T) {
	var out bytes.Buffer
	m := &monitor{out: &out}
	if s := m.feed([]byte("[clocks] xosc hz=12000000\r\n[bringup] rea")); s != pending {
		t.Fatalf("status = %d before ready line completes", s)
	}
	if s := m.feed([]byte("dy claims=14\n")); s != ready {
		t.Fatalf("status = %d, want ready", s)
	}
	if !strings.Contains(out.String(), green+"[bringup] ready claims=14"+reset) {
		t.Fatalf("ready line not highlighted: %q", out.String())
	}
	if strings.Contains(out.String(), "\r") {
		t.Fatal("carriage return echoed")
	}
}

func TestMonitorFailure(t *testing.T) {
	var out bytes.Buffer
	m := &monitor{out: &out}
	in := "[clocks] error: pll lock timeout pll=pll_sys\n[main] error: bring-up failed code=clock_lock_failure\n"
	if s := m.feed([]byte(in)); s != failed {
		t.Fatalf("status = %d, want failed", s)
	}
	if strings.Count(out.String(), red) != 2 {
		t.Fatalf("errors not highlighted: %q", out.String())
	}
	if s := m.feed([]byte("[bringup] ready\n")); s != failed {
		t.Fatal("outcome changed after failure")
	}
}
