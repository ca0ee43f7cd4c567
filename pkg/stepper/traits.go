package stepper

// OutputPin abstracts a single digital output line. Implementations wrap
// whatever GPIO access the target platform provides; the core itself never
// touches hardware registers.
type OutputPin interface {
	SetHigh() error
	SetLow() error
}

// DirectionControl is the capability of selecting the rotation direction
// through a DIR signal.
type DirectionControl interface {
	// DirSetupTime returns the minimum time the DIR signal must be stable
	// before a step pulse may follow.
	DirSetupTime() Nanoseconds

	// Dir provides access to the DIR pin. It fails if the pin has not been
	// provided to the driver yet.
	Dir() (OutputPin, error)
}

// StepControl is the capability of advancing the motor one (micro-)step per
// pulse on a STEP signal.
type StepControl interface {
	// PulseLength returns the minimum duration the STEP signal must be held
	// HIGH for the chip to register a step.
	PulseLength() Nanoseconds

	// Step provides access to the STEP pin. It fails if the pin has not been
	// provided to the driver yet.
	Step() (OutputPin, error)
}

// StepModeControl is the capability of selecting the microstepping
// resolution through mode-select signals.
type StepModeControl interface {
	// ModeSetupTime returns the minimum time the mode signals must be stable
	// before the driver may be re-enabled.
	ModeSetupTime() Nanoseconds

	// ModeHoldTime returns the minimum time the mode signals must be held
	// after the driver has been re-enabled.
	ModeHoldTime() Nanoseconds

	// ApplyStepMode writes the mode-select outputs for the given resolution,
	// typically after disabling the chip's internal logic. It rejects
	// resolutions the chip cannot encode with an InvalidStepModeError.
	ApplyStepMode(mode StepMode) error

	// EnableDriver re-enables the chip after the mode setup window.
	EnableDriver() error

	// SupportedStepModes lists the resolutions the chip accepts.
	SupportedStepModes() []StepMode
}

// MotionControl is the capability of position-targeted motion at a bounded
// velocity. It is provided natively by motion controller chips, or in
// software by motion.Controller for any driver with direction and step
// control.
type MotionControl interface {
	// MoveToPosition arms a motion to the given target step. It does not
	// block and does not itself move the motor; the motion happens across
	// subsequent Update calls. Calling it again before a motion finishes
	// replaces the target.
	MoveToPosition(maxVelocity float64, targetStep int)

	// ResetPosition overwrites the position counter without moving.
	ResetPosition(step int)

	// Update drives the motion forward. It returns true while the motion is
	// still in progress and must be called repeatedly until it returns
	// false.
	Update() (bool, error)
}
