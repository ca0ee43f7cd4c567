// Package a4988 controls the Allegro A4988 stepper motor driver through its
// STEP/DIR interface.
//
// Timing constants are from Figure 1 (Logic Interface Timing Diagram) of the
// datasheet:
// https://www.allegromicro.com/-/media/files/datasheets/a4988-datasheet.ashx
package a4988

import (
	"errors"

	"github.com/stepgo/stepgo/pkg/stepper"
)

const (
	// SetupTime is the minimum time DIR or the MSx pins must be stable
	// before a dependent edge.
	SetupTime stepper.Nanoseconds = 200

	// HoldTime is the minimum time the MSx pins must be held after the chip
	// leaves reset.
	HoldTime stepper.Nanoseconds = 200

	// PulseLength is the minimum STEP high time.
	PulseLength stepper.Nanoseconds = 200
)

var stepModes = []stepper.StepMode{
	stepper.StepModeFull,
	stepper.StepMode2,
	stepper.StepMode4,
	stepper.StepMode8,
	stepper.StepMode16,
}

var errNoDirPin = errors.New("a4988: DIR pin not provided")
var errNoStepPin = errors.New("a4988: STEP pin not provided")

// A4988 is the driver API for a single chip. Create it with New, then outfit
// it with the output pins for the capabilities you need.
type A4988 struct {
	reset stepper.OutputPin
	ms1   stepper.OutputPin
	ms2   stepper.OutputPin
	ms3   stepper.OutputPin
	step  stepper.OutputPin
	dir   stepper.OutputPin
}

// New creates an A4988 with no pins attached.
func New() *A4988 {
	return &A4988{}
}

// WithDirectionControl provides the pin wired to DIR.
func (d *A4988) WithDirectionControl(dir stepper.OutputPin) *A4988 {
	d.dir = dir
	return d
}

// WithStepControl provides the pin wired to STEP.
func (d *A4988) WithStepControl(step stepper.OutputPin) *A4988 {
	d.step = step
	return d
}

// WithStepModeControl provides the pins wired to nRESET, MS1, MS2 and MS3,
// enabling microstepping control.
func (d *A4988) WithStepModeControl(reset, ms1, ms2, ms3 stepper.OutputPin) *A4988 {
	d.reset = reset
	d.ms1 = ms1
	d.ms2 = ms2
	d.ms3 = ms3
	return d
}

func (d *A4988) DirSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *A4988) Dir() (stepper.OutputPin, error) {
	if d.dir == nil {
		return nil, errNoDirPin
	}
	return d.dir, nil
}

func (d *A4988) PulseLength() stepper.Nanoseconds {
	return PulseLength
}

func (d *A4988) Step() (stepper.OutputPin, error) {
	if d.step == nil {
		return nil, errNoStepPin
	}
	return d.step, nil
}

func (d *A4988) ModeSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *A4988) ModeHoldTime() stepper.Nanoseconds {
	return HoldTime
}

func (d *A4988) SupportedStepModes() []stepper.StepMode {
	return stepModes
}

// ApplyStepMode resets the chip's internal logic, which disables the
// h-bridge drivers, and writes the MSx signals for the requested resolution.
func (d *A4988) ApplyStepMode(mode stepper.StepMode) error {
	if err := stepper.ValidateStepMode(mode, stepModes); err != nil {
		return err
	}
	if d.reset == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}

	if err := d.reset.SetLow(); err != nil {
		return err
	}

	var ms1, ms2, ms3 bool
	switch mode {
	case stepper.StepModeFull:
		ms1, ms2, ms3 = false, false, false
	case stepper.StepMode2:
		ms1, ms2, ms3 = true, false, false
	case stepper.StepMode4:
		ms1, ms2, ms3 = false, true, false
	case stepper.StepMode8:
		ms1, ms2, ms3 = true, true, false
	case stepper.StepMode16:
		ms1, ms2, ms3 = true, true, true
	}

	if err := setPin(d.ms1, ms1); err != nil {
		return err
	}
	if err := setPin(d.ms2, ms2); err != nil {
		return err
	}
	return setPin(d.ms3, ms3)
}

// EnableDriver releases nRESET, re-enabling the chip.
func (d *A4988) EnableDriver() error {
	if d.reset == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}
	return d.reset.SetHigh()
}

func setPin(p stepper.OutputPin, high bool) error {
	if high {
		return p.SetHigh()
	}
	return p.SetLow()
}
