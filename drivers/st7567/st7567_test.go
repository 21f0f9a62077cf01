package st7567

import (
	"errors"
	"image/color"
	"testing"
	"time"
)

type recPin struct {
	level  bool
	writes []bool
}

func (p *recPin) Set(l bool) { p.level = l; p.writes = append(p.writes, l) }

type tx struct {
	dc bool
	w  []byte
}

type recBus struct {
	dc     *recPin
	txs    []tx
	failAt int
}

func (b *recBus) Tx(w, r []byte) error {
	b.txs = append(b.txs, tx{dc: b.dc.level, w: append([]byte(nil), w...)})
	if b.failAt > 0 && len(b.txs) == b.failAt {
		return errors.New("bus fault")
	}
	return nil
}

func (b *recBus) Transfer(v byte) (byte, error) { return 0, b.Tx([]byte{v}, nil) }

func newDev() (*Device, *recBus, *recPin, *recPin) {
	dc, bl, rs := &recPin{}, &recPin{}, &recPin{}
	bus := &recBus{dc: dc}
	return New(bus, dc, bl, rs), bus, bl, rs
}

var fast = Config{Contrast: 30, RegulationRatio: 3, ResetPulse: time.Microsecond, ResetRecovery: time.Microsecond}

func TestConfigureSequence(t *testing.T) {
	d, bus, bl, rs := newDev()
	if err := d.Configure(fast); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(rs.writes) != 2 || rs.writes[0] || !rs.writes[1] {
		t.Fatalf("reset pulse %v", rs.writes)
	}
	if len(bl.writes) != 0 {
		t.Fatal("Configure touched the backlight")
	}
	want := [][]byte{
		{0xE2}, {0xA3}, {0xA0}, {0xC8}, {0xA6}, {0xA4}, {0x40}, {0x2F}, {0x23}, {0xAF}, {0x81, 30},
	}
	if len(bus.txs) != len(want) {
		t.Fatalf("got %d transactions", len(bus.txs))
	}
	for i, w := range want {
		if bus.txs[i].dc {
			t.Fatalf("tx %d sent as data", i)
		}
		if string(bus.txs[i].w) != string(w) {
			t.Fatalf("tx %d = % X want % X", i, bus.txs[i].w, w)
		}
	}
	if !d.Configured() {
		t.Fatal("not marked configured")
	}
}

func TestConfigureStopsOnBusFault(t *testing.T) {
	d, bus, _, _ := newDev()
	bus.failAt = 3
	if err := d.Configure(fast); err == nil {
		t.Fatal("expected error")
	}
	if len(bus.txs) != 3 || d.Configured() {
		t.Fatalf("continued after fault: %d txs", len(bus.txs))
	}
}

func TestBacklight(t *testing.T) {
	d, _, bl, _ := newDev()
	_ = d.SetBacklight(BacklightOn)
	_ = d.SetBacklight(BacklightOff)
	if bl.level || d.Backlight() != BacklightOff {
		t.Fatal("backlight not off")
	}
	if len(bl.writes) != 2 || !bl.writes[0] {
		t.Fatalf("writes %v", bl.writes)
	}
}

func TestPixelsAndDisplay(t *testing.T) {
	d, bus, _, _ := newDev()
	if err := d.Display(); err != ErrNotConfigured {
		t.Fatalf("Display before Configure: %v", err)
	}
	_ = d.Configure(fast)
	bus.txs = nil

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	d.SetPixel(0, 0, white)
	d.SetPixel(5, 9, white)
	d.SetPixel(Width, 0, white) // ignored
	if !d.GetPixel(5, 9) || d.GetPixel(5, 8) || d.GetPixel(-1, 0) {
		t.Fatal("pixel state wrong")
	}
	if err := d.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if len(bus.txs) != 2*pages {
		t.Fatalf("got %d transactions", len(bus.txs))
	}
	page1 := bus.txs[3]
	if !page1.dc || len(page1.w) != Width || page1.w[5] != 0x02 {
		t.Fatalf("page 1 data wrong: dc=%v len=%d", page1.dc, len(page1.w))
	}
	if bus.txs[2].w[0] != 0xB1 {
		t.Fatalf("page address % X", bus.txs[2].w)
	}

	d.SetPixel(5, 9, color.RGBA{})
	if d.GetPixel(5, 9) {
		t.Fatal("black did not clear pixel")
	}
	d.SetPixel(1, 1, white)
	d.ClearBuffer()
	if d.GetPixel(1, 1) {
		t.Fatal("ClearBuffer left pixels")
	}
	if x, y := d.Size(); x != 128 || y != 64 {
		t.Fatalf("size %dx%d", x, y)
	}
}

func TestContrastClamped(t *testing.T) {
	d, bus, _, _ := newDev()
	_ = d.SetContrast(200)
	if got := bus.txs[0].w; got[0] != 0x81 || got[1] != 0x3F {
		t.Fatalf("contrast % X", got)
	}
}

func TestConfigureSaturatesSettings(t *testing.T) {
	d, bus, _, _ := newDev()
	cfg := fast
	cfg.Contrast, cfg.RegulationRatio = 99, 9
	if err := d.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := bus.txs[8].w[0]; got != 0x27 {
		t.Fatalf("regulation ratio command %#x, want 0x27", got)
	}
	if got := bus.txs[10].w; got[0] != 0x81 || got[1] != 0x3F {
		t.Fatalf("contrast % X", got)
	}
}
