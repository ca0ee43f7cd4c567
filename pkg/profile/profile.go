// Package profile defines the motion profile interface consumed by the
// software motion controller, plus a trivial constant-velocity
// implementation.
//
// A profile turns a move request into a lazy, finite sequence of per-step
// delays. The unit of the delay values is profile-defined; the caller
// supplies a matching delay-to-ticks converter to the motion controller.
package profile

import "math"

// Velocity is a maximum motor velocity in steps per second.
type Velocity = float64

// Delay is the pause between two consecutive steps, in units defined by the
// emitting profile. Flat emits nanoseconds.
type Delay uint32

// Profile produces the per-step delays that realize a bounded-velocity move.
type Profile interface {
	// EnterPositionMode resets the profile for a move of stepCount steps at
	// no more than maxVelocity. Any delays left over from a previous move
	// are discarded.
	EnterPositionMode(maxVelocity Velocity, stepCount uint32)

	// NextDelay returns the delay to wait after the next step, or ok=false
	// once the move is complete. The sequence is not restartable; call
	// EnterPositionMode to begin a new move.
	NextDelay() (delay Delay, ok bool)
}

// Flat is a constant-velocity profile: every step of a move gets the same
// delay of 1e9/maxVelocity nanoseconds. It has no acceleration ramp, so it
// is only suitable for velocities the motor can reach from standstill.
// Periods too long for the Delay range (velocities below about 0.233
// steps/s) are clamped to its maximum, roughly 4.29 s per step.
type Flat struct {
	delay     Delay
	stepsLeft uint32
}

// NewFlat creates a Flat profile with no move armed.
func NewFlat() *Flat {
	return &Flat{}
}

func (f *Flat) EnterPositionMode(maxVelocity Velocity, stepCount uint32) {
	if math.IsNaN(maxVelocity) || maxVelocity <= 0 {
		f.stepsLeft = 0
		return
	}
	period := 1e9 / maxVelocity
	if period > math.MaxUint32 {
		period = math.MaxUint32
	}
	f.delay = Delay(period)
	f.stepsLeft = stepCount
}

func (f *Flat) NextDelay() (Delay, bool) {
	if f.stepsLeft == 0 {
		return 0, false
	}
	f.stepsLeft--
	return f.delay, true
}
