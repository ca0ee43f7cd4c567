package stepper

import (
	"errors"
	"testing"
)

func TestNanosToTicks(t *testing.T) {
	tests := []struct {
		name string
		ns   Nanoseconds
		freq uint32
		want Ticks
	}{
		{"1:1 at 1GHz", 650, 1_000_000_000, 650},
		{"rounds up at 1MHz", 650, 1_000_000, 1},
		{"exact at 1MHz", 2000, 1_000_000, 2},
		{"rounds up partial tick", 2001, 1_000_000, 3},
		{"zero is zero", 0, 12_000_000, 0},
		{"12MHz klipper-style clock", 1900, 12_000_000, 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NanosToTicks(tt.ns, tt.freq)
			if err != nil {
				t.Fatalf("NanosToTicks(%d, %d): %v", tt.ns, tt.freq, err)
			}
			if got != tt.want {
				t.Errorf("NanosToTicks(%d, %d) = %d, want %d", tt.ns, tt.freq, got, tt.want)
			}
		})
	}
}

func TestNanosToTicks_NeverShortensWait(t *testing.T) {
	// The timing invariant: converted waits are never shorter than the
	// nanosecond constant, whatever the frequency.
	freqs := []uint32{1, 1000, 32_768, 1_000_000, 12_000_000, 1_000_000_000}
	for _, freq := range freqs {
		for _, ns := range []Nanoseconds{1, 99, 100, 650, 1900, 100_000} {
			ticks, err := NanosToTicks(ns, freq)
			if err != nil {
				t.Fatalf("NanosToTicks(%d, %d): %v", ns, freq, err)
			}
			// ticks/freq seconds must cover ns nanoseconds.
			if uint64(ticks)*1e9 < uint64(ns)*uint64(freq) {
				t.Errorf("wait of %d ticks at %d Hz is shorter than %d ns", ticks, freq, ns)
			}
		}
	}
}

func TestNanosToTicks_ZeroFreq(t *testing.T) {
	_, err := NanosToTicks(100, 0)
	var sigErr *SignalError
	if !errors.As(err, &sigErr) || sigErr.Cause != CauseTimeConversion {
		t.Fatalf("expected CauseTimeConversion, got %v", err)
	}
}
