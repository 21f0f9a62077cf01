package bringup

import (
	"testing"

	"gfxpack-go/errcode"
)

func TestDefaultLayoutValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Layout)
		want errcode.Code
	}{
		{"out of range", func(l *Layout) { l.DC = 30 }, errcode.UnknownPin},
		{"negative", func(l *Layout) { l.Red = -1 }, errcode.UnknownPin},
		{"shared pin", func(l *Layout) { l.Reset = l.ChipSelect }, errcode.PinInUse},
		{"console tx", func(l *Layout) { l.Buttons[0] = 0 }, errcode.PinInUse},
		{"console rx", func(l *Layout) { l.DC = 1 }, errcode.PinInUse},
		{"button twice", func(l *Layout) { l.Buttons[1] = l.Buttons[0] }, errcode.PinInUse},
		{"bad mode", func(l *Layout) { l.SPIMode = 4 }, errcode.InvalidParams},
		{"no rate", func(l *Layout) { l.SPIRateHz = 0 }, errcode.InvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mut(&l)
			if got := errcode.Of(l.Validate()); got != tt.want {
				t.Fatalf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignmentsCoverEveryRole(t *testing.T) {
	as := DefaultLayout().Assignments()
	if len(as) != 14 {
		t.Fatalf("assignments = %d", len(as))
	}
	if as[0].Name != "spi_cs" || as[13].Name != "button_e" || as[13].Pin != 22 {
		t.Fatalf("unexpected order: %+v", as)
	}
}

func TestValidateNamesConsoleOwner(t *testing.T) {
	l := DefaultLayout()
	l.Buttons[0] = 0
	err := l.Validate()
	e, ok := err.(*errcode.E)
	if !ok || e.Msg != "gpio0 is console_tx and button_a" {
		t.Fatalf("Validate = %v", err)
	}
}
