// Package stepper is a hardware-agnostic control core for stepper motor
// driver chips operated through STEP/DIR style signals.
//
// A driver chip is represented by a value that implements a subset of the
// capability interfaces (DirectionControl, StepControl, StepModeControl,
// MotionControl). The Stepper facade wraps such a value and exposes one
// uniform API regardless of the chip behind it, while honoring the chip's
// mandatory signal timing through non-blocking, pollable operations.
package stepper

// Stepper wraps a driver chip and exposes its capabilities through a uniform
// interface.
//
// Capabilities must be enabled before use. Enabling checks at run time that
// the wrapped driver actually provides the capability and performs an
// initial synchronous application (for instance, enabling direction control
// immediately asserts the chosen initial direction), so the chip is never
// left unconfigured once a capability is live. Go offers no way to turn a
// missing capability into a compile error, so misuse surfaces as a
// CapabilityError instead.
type Stepper struct {
	driver any

	dir    DirectionControl
	step   StepControl
	mode   StepModeControl
	motion MotionControl
}

// New wraps a driver in a Stepper facade. No capability is enabled yet.
func New(driver any) *Stepper {
	return &Stepper{driver: driver}
}

// Driver returns the wrapped driver, for access to chip-specific
// functionality the facade does not cover.
func (s *Stepper) Driver() any {
	return s.driver
}

// EnableDirectionControl enables direction control and synchronously asserts
// the initial direction, waiting out the chip's setup time.
func (s *Stepper) EnableDirectionControl(initial Direction, timer Timer) error {
	dir, ok := s.driver.(DirectionControl)
	if !ok {
		return &CapabilityError{Capability: "direction control"}
	}
	s.dir = dir
	if err := NewSetDirectionOp(initial, dir, timer).Wait(); err != nil {
		s.dir = nil
		return err
	}
	return nil
}

// EnableStepControl enables step control.
func (s *Stepper) EnableStepControl() error {
	step, ok := s.driver.(StepControl)
	if !ok {
		return &CapabilityError{Capability: "step control"}
	}
	s.step = step
	return nil
}

// EnableStepModeControl enables microstepping mode control and synchronously
// applies the initial resolution, waiting out the chip's setup and hold
// times.
func (s *Stepper) EnableStepModeControl(initial StepMode, timer Timer) error {
	mode, ok := s.driver.(StepModeControl)
	if !ok {
		return &CapabilityError{Capability: "step mode control"}
	}
	s.mode = mode
	if err := NewSetStepModeOp(initial, mode, timer).Wait(); err != nil {
		s.mode = nil
		return err
	}
	return nil
}

// EnableMotionControl enables position-targeted motion. The wrapped driver
// must either provide MotionControl natively or have been wrapped in a
// software implementation such as motion.Controller before constructing the
// facade.
func (s *Stepper) EnableMotionControl() error {
	motion, ok := s.driver.(MotionControl)
	if !ok {
		return &CapabilityError{Capability: "motion control"}
	}
	s.motion = motion
	return nil
}

// SetDirection returns a pollable operation that sets the direction for
// future movements.
func (s *Stepper) SetDirection(direction Direction, timer Timer) (*SetDirectionOp, error) {
	if s.dir == nil {
		return nil, &CapabilityError{Capability: "direction control"}
	}
	return NewSetDirectionOp(direction, s.dir, timer), nil
}

// Step returns a pollable operation that rotates the motor one
// (micro-)step in the previously set direction.
func (s *Stepper) Step(timer Timer) (*StepOp, error) {
	if s.step == nil {
		return nil, &CapabilityError{Capability: "step control"}
	}
	return NewStepOp(s.step, timer), nil
}

// SetStepMode returns a pollable operation that changes the microstepping
// resolution.
func (s *Stepper) SetStepMode(mode StepMode, timer Timer) (*SetStepModeOp, error) {
	if s.mode == nil {
		return nil, &CapabilityError{Capability: "step mode control"}
	}
	return NewSetStepModeOp(mode, s.mode, timer), nil
}

// PulseLength returns the wrapped driver's minimum STEP pulse width.
func (s *Stepper) PulseLength() (Nanoseconds, error) {
	if s.step == nil {
		return 0, &CapabilityError{Capability: "step control"}
	}
	return s.step.PulseLength(), nil
}

// MoveTo returns a pollable operation that moves the motor to the target
// step, respecting the maximum velocity.
func (s *Stepper) MoveTo(maxVelocity float64, targetStep int) (*MoveToOp, error) {
	if s.motion == nil {
		return nil, &CapabilityError{Capability: "motion control"}
	}
	return NewMoveToOp(s.motion, maxVelocity, targetStep), nil
}

// ResetPosition overwrites the motion controller's position counter without
// commanding any motion.
func (s *Stepper) ResetPosition(step int) error {
	if s.motion == nil {
		return &CapabilityError{Capability: "motion control"}
	}
	s.motion.ResetPosition(step)
	return nil
}
