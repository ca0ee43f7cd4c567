package stepper

import (
	"errors"
	"fmt"
)

// SignalCause tags which part of a signal-timing operation failed.
type SignalCause int

const (
	// CausePin means a write to an output pin failed.
	CausePin SignalCause = iota

	// CausePinUnavailable means the driver could not provide the pin the
	// operation needs.
	CausePinUnavailable

	// CauseTimer means starting or polling the countdown timer failed.
	CauseTimer

	// CauseTimeConversion means a nanosecond constant could not be expressed
	// in timer ticks.
	CauseTimeConversion
)

func (c SignalCause) String() string {
	switch c {
	case CausePin:
		return "pin"
	case CausePinUnavailable:
		return "pin unavailable"
	case CauseTimer:
		return "timer"
	case CauseTimeConversion:
		return "time conversion"
	}
	return "unknown"
}

// SignalError is the error reported by the signal-timing operations. It tags
// the failure by source and preserves the underlying error.
type SignalError struct {
	Cause SignalCause
	Err   error
}

func (e *SignalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("signal error: %s", e.Cause)
	}
	return fmt.Sprintf("signal error: %s: %v", e.Cause, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// InvalidStepModeError reports a microstepping resolution the driver chip
// does not accept.
type InvalidStepModeError struct {
	Mode StepMode
}

func (e *InvalidStepModeError) Error() string {
	return fmt.Sprintf("invalid step mode: %d microsteps per step", uint16(e.Mode))
}

// CapabilityError reports use of a capability that has not been enabled on
// the wrapped driver, or that the driver does not support at all.
type CapabilityError struct {
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("driver capability not enabled: %s", e.Capability)
}

var (
	errZeroFreq     = errors.New("timer frequency is zero")
	errTickOverflow = errors.New("duration exceeds timer tick range")
)
