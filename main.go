package main

import (
	"context"
	"image/color"
	"time"

	"gfxpack-go/drivers/st7567"
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup"
	"gfxpack-go/services/heartbeat"
	"gfxpack-go/x/logx"
)

func main() {
	b, err := bringup.Start(bringup.DefaultConfig())
	log := logx.New(nil, "main")
	if err != nil {
		log.Error("bring-up failed", "code", string(errcode.Of(err)), "err", err)
		halt()
	}
	log.Info("boot",
		"sys_hz", b.Clocks.SystemHz,
		"peri_hz", b.Clocks.PeripheralHz,
		"usb_hz", b.Clocks.USBHz,
		"pins", len(b.Claims()))

	// The panel comes up dark; draw a frame before lighting it.
	frame(b.Display)
	if err := b.Display.Display(); err != nil {
		log.Error("display", "err", err)
		halt()
	}
	_ = b.Display.SetBacklight(bringup.BacklightOn)

	app := &heartbeat.Service{
		Buttons: b.Buttons(),
		RGB:     b.RGB,
		Clock:   b.Delay,
		Log:     log.With("app"),
	}
	_ = app.Run(context.Background())
}

func frame(d *st7567.Device) {
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	w, h := d.Size()
	d.ClearBuffer()
	for x := int16(0); x < w; x++ {
		d.SetPixel(x, 0, on)
		d.SetPixel(x, h-1, on)
	}
	for y := int16(0); y < h; y++ {
		d.SetPixel(0, y, on)
		d.SetPixel(w-1, y, on)
	}
}

// halt parks the core after a fatal bring-up error. The hardware is in an
// unknown state and must not be used.
func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
