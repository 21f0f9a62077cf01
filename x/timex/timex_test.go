package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if got := PeriodFromHz(1000); got != 1_000_000 {
		t.Fatalf("PeriodFromHz(1000)=%d", got)
	}
	if got := PeriodFromHz(0); got != uint64(time.Second) {
		t.Fatalf("PeriodFromHz(0)=%d", got)
	}
}

func TestMicros(t *testing.T) {
	if Micros(1500*time.Microsecond) != 1500 || Micros(-time.Second) != 0 {
		t.Fatal("Micros failed")
	}
}
