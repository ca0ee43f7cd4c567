// Package drv8825 controls the Texas Instruments DRV8825 stepper motor
// driver through its STEP/DIR interface.
//
// Timing constants are from section 7.6 (Timing Requirements) of the
// datasheet: https://www.ti.com/lit/ds/symlink/drv8825.pdf
package drv8825

import (
	"errors"

	"github.com/stepgo/stepgo/pkg/stepper"
)

const (
	// SetupTime is the minimum time DIR or the mode pins must be stable
	// before a dependent edge.
	SetupTime stepper.Nanoseconds = 650

	// HoldTime is the minimum time the mode pins must be held after nRESET
	// is released.
	HoldTime stepper.Nanoseconds = 650

	// PulseLength is the minimum STEP high time.
	PulseLength stepper.Nanoseconds = 1900
)

var stepModes = []stepper.StepMode{
	stepper.StepModeFull,
	stepper.StepMode2,
	stepper.StepMode4,
	stepper.StepMode8,
	stepper.StepMode16,
	stepper.StepMode32,
}

var errNoDirPin = errors.New("drv8825: DIR pin not provided")
var errNoStepPin = errors.New("drv8825: STEP pin not provided")

// DRV8825 is the driver API for a single chip. Create it with New, then
// outfit it with the output pins for the capabilities you need.
type DRV8825 struct {
	reset stepper.OutputPin
	mode0 stepper.OutputPin
	mode1 stepper.OutputPin
	mode2 stepper.OutputPin
	step  stepper.OutputPin
	dir   stepper.OutputPin
}

// New creates a DRV8825 with no pins attached.
func New() *DRV8825 {
	return &DRV8825{}
}

// WithDirectionControl provides the pin wired to DIR.
func (d *DRV8825) WithDirectionControl(dir stepper.OutputPin) *DRV8825 {
	d.dir = dir
	return d
}

// WithStepControl provides the pin wired to STEP.
func (d *DRV8825) WithStepControl(step stepper.OutputPin) *DRV8825 {
	d.step = step
	return d
}

// WithStepModeControl provides the pins wired to nRESET, MODE0, MODE1 and
// MODE2, enabling microstepping control.
func (d *DRV8825) WithStepModeControl(reset, mode0, mode1, mode2 stepper.OutputPin) *DRV8825 {
	d.reset = reset
	d.mode0 = mode0
	d.mode1 = mode1
	d.mode2 = mode2
	return d
}

func (d *DRV8825) DirSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *DRV8825) Dir() (stepper.OutputPin, error) {
	if d.dir == nil {
		return nil, errNoDirPin
	}
	return d.dir, nil
}

func (d *DRV8825) PulseLength() stepper.Nanoseconds {
	return PulseLength
}

func (d *DRV8825) Step() (stepper.OutputPin, error) {
	if d.step == nil {
		return nil, errNoStepPin
	}
	return d.step, nil
}

func (d *DRV8825) ModeSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *DRV8825) ModeHoldTime() stepper.Nanoseconds {
	return HoldTime
}

func (d *DRV8825) SupportedStepModes() []stepper.StepMode {
	return stepModes
}

// ApplyStepMode resets the chip's internal logic, which disables the
// h-bridge drivers, and writes the mode-select signals for the requested
// resolution.
func (d *DRV8825) ApplyStepMode(mode stepper.StepMode) error {
	if err := stepper.ValidateStepMode(mode, stepModes); err != nil {
		return err
	}
	if d.reset == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}

	if err := d.reset.SetLow(); err != nil {
		return err
	}

	var m0, m1, m2 bool
	switch mode {
	case stepper.StepModeFull:
		m0, m1, m2 = false, false, false
	case stepper.StepMode2:
		m0, m1, m2 = true, false, false
	case stepper.StepMode4:
		m0, m1, m2 = false, true, false
	case stepper.StepMode8:
		m0, m1, m2 = true, true, false
	case stepper.StepMode16:
		m0, m1, m2 = false, false, true
	case stepper.StepMode32:
		m0, m1, m2 = true, true, true
	}

	if err := setPin(d.mode0, m0); err != nil {
		return err
	}
	if err := setPin(d.mode1, m1); err != nil {
		return err
	}
	return setPin(d.mode2, m2)
}

// EnableDriver releases nRESET, re-enabling the chip.
func (d *DRV8825) EnableDriver() error {
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
