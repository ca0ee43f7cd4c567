package motion

import (
	"errors"
	"fmt"
)

// Phase tags which sub-operation of the motion controller produced an error.
type Phase int

const (
	// PhaseSetDirection covers the direction-change operation at the start
	// of a motion.
	PhaseSetDirection Phase = iota

	// PhaseStep covers the step pulse operation.
	PhaseStep

	// PhaseStepDelay covers waiting out the remainder of a step period after
	// the pulse.
	PhaseStepDelay

	// PhaseTimeConversion covers converting a profile delay into timer
	// ticks.
	PhaseTimeConversion
)

func (p Phase) String() string {
	switch p {
	case PhaseSetDirection:
		return "set direction"
	case PhaseStep:
		return "step"
	case PhaseStepDelay:
		return "step delay"
	case PhaseTimeConversion:
		return "time conversion"
	}
	return "unknown"
}

// Error is the error reported by Controller.Update. It records the phase the
// failure occurred in and preserves the underlying error, typically a
// *stepper.SignalError or a timer error.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("motion control: %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrBusy is returned when a driver capability is requested through the
// controller while a motion is in progress.
var ErrBusy = errors.New("motion in progress")
