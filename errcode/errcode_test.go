package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"clock_lock_failure":       ClockLockFailure,
		"bus_transaction_failure":  BusTransactionFailure,
		"resource_already_claimed": ResourceAlreadyClaimed,
		"pin_in_use":               PinInUse,
		"bus_in_use":               BusInUse,
		"unknown_pin":              UnknownPin,
		"not_enabled":              NotEnabled,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	cause := errors.New("nak")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare", PinInUse, PinInUse},
		{"wrapped E", Wrap(BusTransactionFailure, "spi0.tx", cause), BusTransactionFailure},
		{"fmt wrapped", fmt.Errorf("display: %w", Wrap(ClockLockFailure, "pll_sys", nil)), ClockLockFailure},
		{"fmt wrapped code", fmt.Errorf("claim: %w", BusInUse), BusInUse},
		{"foreign", cause, Error},
	}
	for _, tc := range tests {
		if got := Of(tc.err); got != tc.want {
			t.Fatalf("%s: Of()=%q want %q", tc.name, got, tc.want)
		}
	}
}

func TestEErrorAndUnwrap(t *testing.T) {
	cause := errors.New("nak")
	err := Wrap(BusTransactionFailure, "spi0.tx", cause)
	if got := err.Error(); got != "spi0.tx: bus_transaction_failure (nak)" {
		t.Fatalf("Error()=%q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	e := &E{C: InvalidParams, Msg: "rate too high"}
	if e.Error() != "invalid_params: rate too high" {
		t.Fatalf("Error()=%q", e.Error())
	}
}

func TestIsClaimConflict(t *testing.T) {
	if !IsClaimConflict(PinInUse) || !IsClaimConflict(Wrap(ResourceAlreadyClaimed, "take", nil)) {
		t.Fatal("claim family not detected")
	}
	if IsClaimConflict(ClockLockFailure) || IsClaimConflict(nil) {
		t.Fatal("non-claim code reported as conflict")
	}
}
