// Package motion provides a software implementation of the motion control
// capability for any driver with direction and step control.
//
// Motion controller chips move the motor to a target position on their own.
// Controller offers the same capability in software: it sequences direction
// changes, step pulses, and inter-step delays against a motion profile, as a
// single composite non-blocking operation driven by repeated Update calls.
package motion

import (
	"math"

	"github.com/stepgo/stepgo/pkg/profile"
	"github.com/stepgo/stepgo/pkg/stepper"
)

// Driver is the subset of driver capabilities the software motion controller
// needs.
type Driver interface {
	stepper.DirectionControl
	stepper.StepControl
}

// DelayToTicks converts a profile delay value into timer ticks. The profile
// is agnostic about time units and the tick length depends on the timer, so
// the caller supplies the conversion that matches their pairing.
type DelayToTicks func(d profile.Delay) (stepper.Ticks, error)

// NanosDelayToTicks returns a converter for profiles that emit nanosecond
// delays (such as profile.Flat), for a timer running at freq ticks per
// second.
func NanosDelayToTicks(freq uint32) DelayToTicks {
	return func(d profile.Delay) (stepper.Ticks, error) {
		return stepper.NanosToTicks(stepper.Nanoseconds(d), freq)
	}
}

type state int

const (
	stateIdle state = iota
	stateSettingDirection
	stateStepping
	stateStepDelay
	stateInvalid
)

// Controller implements stepper.MotionControl on top of a STEP/DIR driver, a
// timer, and a motion profile.
//
// All methods must be called from a single goroutine. The controller owns
// the driver and timer; while a motion is in progress the delegate
// capability methods return ErrBusy rather than disturb the in-flight
// operation.
type Controller struct {
	driver  Driver
	timer   stepper.Timer
	profile profile.Profile
	convert DelayToTicks

	state state
	dirOp *stepper.SetDirectionOp
	stpOp *stepper.StepOp

	// Remaining ticks of the current step period, armed on the timer after
	// the pulse completes. stepDelayArmed records whether the countdown has
	// been started yet, so a failed start can be retried without losing the
	// remainder.
	stepDelayLeft  stepper.Ticks
	stepDelayArmed bool

	hasNewMotion bool
	newMotion    stepper.Direction

	currentStep      int
	currentDirection stepper.Direction
}

// New creates a software motion controller. The initial position is step 0;
// use ResetPosition to seed a different one.
func New(driver Driver, timer stepper.Timer, p profile.Profile, convert DelayToTicks) *Controller {
	return &Controller{
		driver:  driver,
		timer:   timer,
		profile: p,
		convert: convert,
		state:   stateIdle,
		// Only read during an ongoing movement, by which point it has been
		// overwritten.
		currentDirection: stepper.Forward,
	}
}

// CurrentStep returns the position counter.
func (c *Controller) CurrentStep() int {
	return c.currentStep
}

// CurrentDirection returns the direction most recently asserted on the
// hardware.
func (c *Controller) CurrentDirection() stepper.Direction {
	return c.currentDirection
}

// Moving reports whether a motion is in progress or armed.
func (c *Controller) Moving() bool {
	return c.state != stateIdle || c.hasNewMotion
}

// MoveToPosition arms a motion to targetStep at no more than |maxVelocity|
// steps per second; the sign of the velocity is ignored, the direction
// follows from the target. It does not block and does not itself move the
// motor; the motion happens across subsequent Update calls. Calling it again
// before the previous motion has finished replaces the target: the next time
// the controller is idle, only the newest request is pursued.
//
// A single request covers at most 2^32-1 steps; a larger delta is clamped
// to that length.
func (c *Controller) MoveToPosition(maxVelocity float64, targetStep int) {
	delta := targetStep - c.currentStep

	steps := uint64(delta)
	direction := stepper.Forward
	if delta < 0 {
		steps = uint64(-delta)
		direction = stepper.Backward
	}
	if steps > math.MaxUint32 {
		steps = math.MaxUint32
	}
	c.profile.EnterPositionMode(math.Abs(maxVelocity), uint32(steps))

	if delta == 0 {
		// Already there. The profile has been reset to an empty move, which
		// also cancels any previously armed request.
		c.hasNewMotion = false
		return
	}

	c.newMotion = direction
	c.hasNewMotion = true
}

// ResetPosition overwrites the position counter without commanding any
// motion. An in-progress motion is not disturbed, but its resting position
// shifts along with the counter.
func (c *Controller) ResetPosition(step int) {
	c.currentStep = step
}

// Update drives the motion forward and must be called repeatedly, e.g. once
// per main-loop iteration. It returns true while the motion is still in
// progress and false once there is nothing left to do.
//
// On error, the controller's state is left unchanged, the return value is
// meaningless, and hardware writes are not rolled back; the caller decides
// whether to keep calling Update or to abandon the motion. If a previous
// Update was aborted mid-transition (by a recovered panic), the controller
// is poisoned and Update panics deterministically.
func (c *Controller) Update() (bool, error) {
	st := c.state
	if st == stateInvalid {
		panic("motion: controller state invalid, caused by a previously aborted update")
	}
	// Poisoned until the transition below lands in a defined state.
	c.state = stateInvalid

	for {
		switch st {
		case stateIdle:
			// Idle can mean there is nothing to do, or it is just a short
			// breather between sub-operations of an ongoing motion.

			if c.hasNewMotion {
				// A new motion has been armed. This may override an ongoing
				// one; makes no difference here.
				c.hasNewMotion = false
				c.currentDirection = c.newMotion
				c.dirOp = stepper.NewSetDirectionOp(c.newMotion, c.driver, c.timer)
				st = stateSettingDirection
				continue
			}

			delay, ok := c.profile.NextDelay()
			if !ok {
				// Truly nothing to do.
				c.state = stateIdle
				return false, nil
			}

			// Convert the full step period up front, so a conversion failure
			// surfaces before any pulse is emitted and before the position
			// counter can change.
			left, err := c.delayAfterPulse(delay)
			if err != nil {
				c.state = stateIdle
				return false, &Error{Phase: PhaseTimeConversion, Err: err}
			}
			c.stepDelayLeft = left
			c.stpOp = stepper.NewStepOp(c.driver, c.timer)
			st = stateStepping
			continue

		case stateSettingDirection:
			done, err := c.dirOp.Poll()
			if err != nil {
				c.state = stateSettingDirection
				return false, &Error{Phase: PhaseSetDirection, Err: err}
			}
			if !done {
				c.state = stateSettingDirection
				return true, nil
			}
			c.dirOp = nil
			st = stateIdle
			continue

		case stateStepping:
			done, err := c.stpOp.Poll()
			if err != nil {
				c.state = stateStepping
				return false, &Error{Phase: PhaseStep, Err: err}
			}
			if !done {
				c.state = stateStepping
				return true, nil
			}

			// The pulse has fully completed; only now does the step count.
			c.currentStep += c.currentDirection.Unit()
			c.stpOp = nil

			if c.stepDelayLeft == 0 {
				st = stateIdle
				continue
			}
			c.stepDelayArmed = false
			st = stateStepDelay
			continue

		case stateStepDelay:
			if !c.stepDelayArmed {
				if err := c.timer.Start(c.stepDelayLeft); err != nil {
					c.state = stateStepDelay
					return false, &Error{Phase: PhaseStepDelay, Err: err}
				}
				c.stepDelayArmed = true
			}
			expired, err := c.timer.Poll()
			if err != nil {
				c.state = stateStepDelay
				return false, &Error{Phase: PhaseStepDelay, Err: err}
			}
			if !expired {
				c.state = stateStepDelay
				return true, nil
			}
			st = stateIdle
			continue
		}
	}
}

// delayAfterPulse converts a profile delay into timer ticks and subtracts
// the ticks already consumed by the step pulse itself, so the total period
// between pulses matches the profile's commanded delay exactly.
func (c *Controller) delayAfterPulse(delay profile.Delay) (stepper.Ticks, error) {
	delayTicks, err := c.convert(delay)
	if err != nil {
		return 0, err
	}
	pulseTicks, err := stepper.NanosToTicks(c.driver.PulseLength(), c.timer.Freq())
	if err != nil {
		return 0, err
	}
	if delayTicks <= pulseTicks {
		return 0, nil
	}
	return delayTicks - pulseTicks, nil
}

// SetDirection returns a pollable direction-change operation on the wrapped
// driver. Only available while no motion is in progress.
func (c *Controller) SetDirection(direction stepper.Direction) (*stepper.SetDirectionOp, error) {
	if c.state != stateIdle {
		return nil, ErrBusy
	}
	return stepper.NewSetDirectionOp(direction, c.driver, c.timer), nil
}

// Step returns a pollable single-step operation on the wrapped driver. Only
// available while no motion is in progress.
func (c *Controller) Step() (*stepper.StepOp, error) {
	if c.state != stateIdle {
		return nil, ErrBusy
	}
	return stepper.NewStepOp(c.driver, c.timer), nil
}

// SetStepMode returns a pollable step-mode change operation on the wrapped
// driver. Only available while no motion is in progress, and only if the
// wrapped driver supports step mode control.
func (c *Controller) SetStepMode(mode stepper.StepMode) (*stepper.SetStepModeOp, error) {
	if c.state != stateIdle {
		return nil, ErrBusy
	}
	modeDriver, ok := any(c.driver).(stepper.StepModeControl)
	if !ok {
		return nil, &stepper.CapabilityError{Capability: "step mode control"}
	}
	return stepper.NewSetStepModeOp(mode, modeDriver, c.timer), nil
}

// Driver returns the wrapped driver, only while no motion is in progress.
func (c *Controller) Driver() (Driver, error) {
	if c.state != stateIdle {
		return nil, ErrBusy
	}
	return c.driver, nil
}

// Profile returns the wrapped motion profile.
func (c *Controller) Profile() profile.Profile {
	return c.profile
}
