package bringup

import (
	"strconv"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup/internal/platform"
	"gfxpack-go/x/mathx"
)

// GPIOMax is the highest user GPIO on the RP2040.
const GPIOMax = 29

// Layout is the board wiring and bus parameters. DefaultLayout matches the
// GFX Pack on a Pico.
type Layout struct {
	ChipSelect int `yaml:"chip_select"`
	SCK        int `yaml:"sck"`
	MOSI       int `yaml:"mosi"`
	DC         int `yaml:"dc"`
	Backlight  int `yaml:"backlight"`
	Reset      int `yaml:"reset"`

	Red   int `yaml:"red"`
	Green int `yaml:"green"`
	Blue  int `yaml:"blue"`

	Buttons [5]int `yaml:"buttons,flow"`

	SPIRateHz uint32 `yaml:"spi_rate_hz"`
	SPIMode   uint8  `yaml:"spi_mode"`
	PWMFreqHz uint32 `yaml:"pwm_freq_hz"`
}

func DefaultLayout() Layout {
	return Layout{
		ChipSelect: 17,
		SCK:        18,
		MOSI:       19,
		DC:         20,
		Backlight:  9,
		Reset:      21,
		Red:        6,
		Green:      7,
		Blue:       8,
		Buttons:    [5]int{12, 13, 14, 15, 22},
		SPIRateHz:  10_000_000,
		SPIMode:    3, // CPOL=1 (idle high), CPHA=1 (capture on second edge)
		PWMFreqHz:  2000,
	}
}

// Assignment names the role a layout gives one pin.
type Assignment struct {
	Pin  int
	Name string
}

var buttonNames = [5]string{"button_a", "button_b", "button_c", "button_d", "button_e"}

// Assignments lists every pin in the layout with its role name, in bring-up
// order.
func (l Layout) Assignments() []Assignment {
	as := []Assignment{
		{l.ChipSelect, "spi_cs"},
		{l.SCK, "spi_sck"},
		{l.MOSI, "spi_mosi"},
		{l.DC, "lcd_dc"},
		{l.Backlight, "lcd_backlight"},
		{l.Reset, "lcd_reset"},
		{l.Red, "rgb_red"},
		{l.Green, "rgb_green"},
		{l.Blue, "rgb_blue"},
	}
	for i, n := range l.Buttons {
		as = append(as, Assignment{n, buttonNames[i]})
	}
	return as
}

// Validate checks pin ranges, that no pin serves two roles or a pad the
// platform keeps for itself, and the bus parameters. It runs before any
// hardware is touched.
func (l Layout) Validate() error {
	const op = "layout.validate"
	var owner [GPIOMax + 1]string
	for n := range owner {
		owner[n], _ = platform.Reserved(n)
	}
	for _, a := range l.Assignments() {
		if !mathx.Between(a.Pin, 0, GPIOMax) {
			return &errcode.E{C: errcode.UnknownPin, Op: op, Msg: a.Name + "=" + strconv.Itoa(a.Pin)}
		}
		if prev := owner[a.Pin]; prev != "" {
			return &errcode.E{C: errcode.PinInUse, Op: op, Msg: "gpio" + strconv.Itoa(a.Pin) + " is " + prev + " and " + a.Name}
		}
		owner[a.Pin] = a.Name
	}
	if l.SPIMode > 3 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "spi_mode"}
	}
	if l.SPIRateHz == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "spi_rate_hz"}
	}
	return nil
}
