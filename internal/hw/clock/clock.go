// Package clock provides a countdown timer backed by the OS monotonic clock,
// for running the signal state machines without hardware timer peripherals.
//
// The nanosecond-scale setup and pulse figures of the chips are below what a
// non-realtime OS can honor precisely. The timer only guarantees the lower
// bound: a wait is never reported expired early, it may expire late.
package clock

import (
	"errors"
	"time"

	"github.com/stepgo/stepgo/pkg/stepper"
)

var errNotStarted = errors.New("clock: timer not started")
var errZeroFreq = errors.New("clock: tick frequency is zero")

// Ticker implements stepper.Timer. The zero value is not usable; create it
// with New.
type Ticker struct {
	freq     uint32
	deadline time.Time
	armed    bool
}

// New creates a Ticker with the given tick frequency. A frequency of
// 1e9 makes one tick equal one nanosecond.
func New(freq uint32) *Ticker {
	return &Ticker{freq: freq}
}

func (t *Ticker) Freq() uint32 {
	return t.freq
}

func (t *Ticker) Start(ticks stepper.Ticks) error {
	if t.freq == 0 {
		return errZeroFreq
	}
	// Round up so the wait is never shorter than the requested ticks.
	ns := (uint64(ticks)*1_000_000_000 + uint64(t.freq) - 1) / uint64(t.freq)
	t.deadline = time.Now().Add(time.Duration(ns))
	t.armed = true
	return nil
}

func (t *Ticker) Poll() (bool, error) {
	if !t.armed {
		return false, errNotStarted
	}
	if time.Now().Before(t.deadline) {
		return false, nil
	}
	return true, nil
}
