// Package display binds the LCD controller to its control pins and exclusive
// bus device, holding the backlight dark until the controller is initialised.
package display

import (
	"gfxpack-go/drivers/st7567"
	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/pinmux"
	"gfxpack-go/services/bringup/internal/spidev"
	"gfxpack-go/x/logx"
)

// Controller is the part of the display driver bring-up depends on.
type Controller interface {
	SetBacklight(s st7567.BacklightStatus) error
	Configure(cfgs ...st7567.Config) error
}

// Pins are the three control lines, each already claimed as an output.
type Pins struct {
	DC        *pinmux.Output
	Backlight *pinmux.Output
	Reset     *pinmux.Output
}

// Bind constructs the controller on dev and runs Init. The returned device
// has its backlight off.
func Bind(dev *spidev.ExclusiveDevice, pins Pins, cfg st7567.Config, log *logx.Logger) (*st7567.Device, error) {
	if dev == nil || pins.DC == nil || pins.Backlight == nil || pins.Reset == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "display.bind", Msg: "missing resource"}
	}
	d := st7567.New(dev, pins.DC, pins.Backlight, pins.Reset)
	if err := Init(d, cfg); err != nil {
		log.Error("display init failed", "err", err)
		return nil, err
	}
	log.Info("display ready", "cs", dev.ChipSelect(), "backlight", "off")
	return d, nil
}

// Init forces the backlight off, then runs the controller's reset and init
// sequence. The order prevents a visible flash of the undefined framebuffer.
// The backlight is left off for the caller.
func Init(c Controller, cfg st7567.Config) error {
	if err := c.SetBacklight(st7567.BacklightOff); err != nil {
		if errcode.Of(err) != errcode.Error {
			return err
		}
		return errcode.Wrap(errcode.Error, "display.backlight", err)
	}
	if err := c.Configure(cfg); err != nil {
		if errcode.Of(err) == errcode.BusTransactionFailure {
			return err
		}
		return errcode.Wrap(errcode.BusTransactionFailure, "display.init", err)
	}
	return nil
}
