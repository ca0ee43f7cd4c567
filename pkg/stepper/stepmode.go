package stepper

import "fmt"

// StepMode is a microstepping resolution, expressed as the number of
// microsteps per full motor step. Valid resolutions are the powers of two
// from 1 (full steps) to 256, but each driver chip only accepts the subset
// it advertises through StepModeControl.SupportedStepModes.
type StepMode uint16

const (
	StepModeFull StepMode = 1
	StepMode2    StepMode = 2
	StepMode4    StepMode = 4
	StepMode8    StepMode = 8
	StepMode16   StepMode = 16
	StepMode32   StepMode = 32
	StepMode64   StepMode = 64
	StepMode128  StepMode = 128
	StepMode256  StepMode = 256
)

// StepModeFromInt converts a plain integer into a StepMode, accepting only
// the powers of two from 1 to 256.
func StepModeFromInt(v int) (StepMode, error) {
	switch v {
	case 1, 2, 4, 8, 16, 32, 64, 128, 256:
		return StepMode(v), nil
	}
	return 0, &InvalidStepModeError{Mode: StepMode(v)}
}

// Microsteps returns the resolution as a plain integer.
func (m StepMode) Microsteps() int {
	return int(m)
}

func (m StepMode) String() string {
	if m == StepModeFull {
		return "full step"
	}
	return fmt.Sprintf("1/%d step", uint16(m))
}

// ValidateStepMode checks that mode is one of the modes in supported.
// Drivers use this to reject resolutions their mode pins cannot encode.
func ValidateStepMode(mode StepMode, supported []StepMode) error {
	for _, s := range supported {
		if mode == s {
			return nil
		}
	}
	return &InvalidStepModeError{Mode: mode}
}
