// Package st7567 drives the ST7567 128x64 monochrome LCD controller over a
// write-only SPI link with separate data/command, reset and backlight lines.
//
// Bring-up order matters on boards where the backlight is independent of the
// controller: call SetBacklight(BacklightOff) before Configure so the
// undefined power-on framebuffer is never lit.
//
// The framebuffer is page-major (8 pages of 128 columns, LSB at the top), the
// controller's native layout, so Display streams it without conversion.
package st7567

import (
	"errors"
	"image/color"
	"time"

	"tinygo.org/x/drivers"

	"gfxpack-go/x/mathx"
)

const (
	Width  = 128
	Height = 64
	pages  = Height / 8
)

// Commands (datasheet names).
const (
	cmdDisplayOff   = 0xAE
	cmdDisplayOn    = 0xAF
	cmdStartLine    = 0x40
	cmdPageAddr     = 0xB0
	cmdColumnHigh   = 0x10
	cmdColumnLow    = 0x00
	cmdSegNormal    = 0xA0
	cmdInverseOff   = 0xA6
	cmdAllPixelsOff = 0xA4
	cmdBias17       = 0xA3
	cmdReset        = 0xE2
	cmdComReverse   = 0xC8
	cmdPowerControl = 0x28
	cmdRegRatio     = 0x20
	cmdVolumeMode   = 0x81
)

const (
	powerBooster   = 0x04
	powerRegulator = 0x02
	powerFollower  = 0x01
	maxContrast    = 0x3F
	maxRegRatio    = 0x07
)

// BacklightStatus is the level requested on the backlight enable line.
type BacklightStatus uint8

const (
	BacklightOff BacklightStatus = iota
	BacklightOn
)

var ErrNotConfigured = errors.New("st7567: not configured")

// Pin is an output line owned by the driver.
type Pin interface {
	Set(level bool)
}

// Config controls the init sequence. Configure without a Config uses
// DefaultConfig.
type Config struct {
	// Contrast is the electronic volume, 0..63.
	Contrast uint8
	// RegulationRatio selects the V0 regulator ratio, 0..7.
	RegulationRatio uint8
	// ResetPulse is how long RST is held low. Default 1 ms.
	ResetPulse time.Duration
	// ResetRecovery is the wait after releasing RST. Default 5 ms.
	ResetRecovery time.Duration
}

// DefaultConfig suits the GFX Pack panel.
func DefaultConfig() Config {
	return Config{Contrast: 30, RegulationRatio: 3}
}

// Device is an ST7567 on an exclusive SPI device.
type Device struct {
	bus        drivers.SPI
	dc, bl, rs Pin

	cfg        Config
	backlight  BacklightStatus
	configured bool

	cmd    [3]byte
	buffer [Width * pages]byte
}

// Ensure compile-time conformance with drivers.Displayer.
var _ drivers.Displayer = (*Device)(nil)

// New creates the device object. It does not touch the hardware. The bus
// must assert its own chip-select per transaction.
func New(bus drivers.SPI, dc, backlight, reset Pin) *Device {
	return &Device{bus: bus, dc: dc, bl: backlight, rs: reset}
}

// SetBacklight drives the backlight enable line.
func (d *Device) SetBacklight(s BacklightStatus) error {
	d.bl.Set(s == BacklightOn)
	d.backlight = s
	return nil
}

// Backlight returns the last requested backlight status.
func (d *Device) Backlight() BacklightStatus { return d.backlight }

// Configured reports whether the init sequence completed.
func (d *Device) Configured() bool { return d.configured }

// Configure pulses reset and runs the init command sequence. The backlight
// line is not touched.
func (d *Device) Configure(cfgs ...Config) error {
	c := DefaultConfig()
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	c.Contrast = mathx.Min(c.Contrast, maxContrast)
	c.RegulationRatio = mathx.Min(c.RegulationRatio, maxRegRatio)
	if c.ResetPulse <= 0 {
		c.ResetPulse = time.Millisecond
	}
	if c.ResetRecovery <= 0 {
		c.ResetRecovery = 5 * time.Millisecond
	}
	d.cfg = c
	d.configured = false

	d.rs.Set(false)
	time.Sleep(c.ResetPulse)
	d.rs.Set(true)
	time.Sleep(c.ResetRecovery)

	seq := []byte{
		cmdReset,
		cmdBias17,
		cmdSegNormal,
		cmdComReverse,
		cmdInverseOff,
		cmdAllPixelsOff,
		cmdStartLine,
		cmdPowerControl | powerBooster | powerRegulator | powerFollower,
		cmdRegRatio | c.RegulationRatio,
		cmdDisplayOn,
	}
	for _, b := range seq {
		if err := d.command(b); err != nil {
			return err
		}
	}
	if err := d.SetContrast(c.Contrast); err != nil {
		return err
	}
	d.configured = true
	return nil
}

// SetContrast sets the electronic volume (0..63).
func (d *Device) SetContrast(v uint8) error {
	return d.command(cmdVolumeMode, mathx.Min(v, maxContrast))
}

// Sleep turns the panel driver off (true) or back on (false).
func (d *Device) Sleep(on bool) error {
	if on {
		return d.command(cmdDisplayOff)
	}
	return d.command(cmdDisplayOn)
}

// Size returns the panel size in pixels.
func (d *Device) Size() (x, y int16) { return Width, Height }

// SetPixel sets a pixel in the buffer. Any non-black colour lights the pixel.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	i := int(y/8)*Width + int(x)
	mask := byte(1) << uint(y%8)
	if c.R|c.G|c.B != 0 {
		d.buffer[i] |= mask
	} else {
		d.buffer[i] &^= mask
	}
}

// GetPixel reports whether a pixel is lit in the buffer.
func (d *Device) GetPixel(x, y int16) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.buffer[int(y/8)*Width+int(x)]&(1<<uint(y%8)) != 0
}

// ClearBuffer clears the buffer without touching the panel.
func (d *Device) ClearBuffer() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
}

// Display streams the buffer to the panel, one page per transaction.
func (d *Device) Display() error {
	if !d.configured {
		return ErrNotConfigured
	}
	for p := 0; p < pages; p++ {
		if err := d.command(cmdPageAddr|byte(p), cmdColumnHigh, cmdColumnLow); err != nil {
			return err
		}
		if err := d.data(d.buffer[p*Width : (p+1)*Width]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) command(b ...byte) error {
	d.dc.Set(false)
	n := copy(d.cmd[:], b)
	return d.bus.Tx(d.cmd[:n], nil)
}

func (d *Device) data(b []byte) error {
	d.dc.Set(true)
	return d.bus.Tx(b, nil)
}
