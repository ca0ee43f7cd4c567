// Package tmc2209 controls the Trinamic TMC2209 stepper motor driver through
// its STEP/DIR interface.
//
// The chip also offers a single-wire UART interface that can configure much
// more than the MS1/MS2 pins can express; that interface is not covered
// here.
//
// Timing constants are from the datasheet:
// https://www.trinamic.com/fileadmin/assets/Products/ICs_Documents/TMC2209_Datasheet_V103.pdf
package tmc2209

import (
	"errors"

	"github.com/stepgo/stepgo/pkg/stepper"
)

const (
	// SetupTime is the minimum time DIR or the MSx pins must be stable
	// before a dependent edge.
	SetupTime stepper.Nanoseconds = 20

	// HoldTime is the minimum time the MSx pins must be held after the chip
	// has been re-enabled.
	HoldTime stepper.Nanoseconds = 20

	// PulseLength is the minimum STEP high time, the typical value of
	// max(filtering time, fclk+20).
	PulseLength stepper.Nanoseconds = 100
)

var stepModes = []stepper.StepMode{
	stepper.StepMode8,
	stepper.StepMode16,
	stepper.StepMode32,
	stepper.StepMode64,
}

var errNoDirPin = errors.New("tmc2209: DIR pin not provided")
var errNoStepPin = errors.New("tmc2209: STEP pin not provided")

// TMC2209 is the driver API for a single chip. Create it with New, then
// outfit it with the output pins for the capabilities you need.
type TMC2209 struct {
	enableN stepper.OutputPin
	standby stepper.OutputPin
	ms1     stepper.OutputPin
	ms2     stepper.OutputPin
	step    stepper.OutputPin
	dir     stepper.OutputPin
}

// New creates a TMC2209 with no pins attached.
func New() *TMC2209 {
	return &TMC2209{}
}

// WithDirectionControl provides the pin wired to DIR.
func (d *TMC2209) WithDirectionControl(dir stepper.OutputPin) *TMC2209 {
	d.dir = dir
	return d
}

// WithStepControl provides the pin wired to STEP.
func (d *TMC2209) WithStepControl(step stepper.OutputPin) *TMC2209 {
	d.step = step
	return d
}

// WithStepModeControl provides the pins wired to ENN, STDBY, MS1 and MS2,
// enabling microstepping control.
func (d *TMC2209) WithStepModeControl(enableN, standby, ms1, ms2 stepper.OutputPin) *TMC2209 {
	d.enableN = enableN
	d.standby = standby
	d.ms1 = ms1
	d.ms2 = ms2
	return d
}

func (d *TMC2209) DirSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *TMC2209) Dir() (stepper.OutputPin, error) {
	if d.dir == nil {
		return nil, errNoDirPin
	}
	return d.dir, nil
}

func (d *TMC2209) PulseLength() stepper.Nanoseconds {
	return PulseLength
}

func (d *TMC2209) Step() (stepper.OutputPin, error) {
	if d.step == nil {
		return nil, errNoStepPin
	}
	return d.step, nil
}

func (d *TMC2209) ModeSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *TMC2209) ModeHoldTime() stepper.Nanoseconds {
	return HoldTime
}

func (d *TMC2209) SupportedStepModes() []stepper.StepMode {
	return stepModes
}

// ApplyStepMode disables the driver stage and puts the chip in standby, then
// writes the MS1/MS2 signals for the requested resolution. ENN is active
// low.
func (d *TMC2209) ApplyStepMode(mode stepper.StepMode) error {
	if err := stepper.ValidateStepMode(mode, stepModes); err != nil {
		return err
	}
	if d.enableN == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}

	if err := d.enableN.SetHigh(); err != nil {
		return err
	}
	if err := d.standby.SetHigh(); err != nil {
		return err
	}

	var ms1, ms2 bool
	switch mode {
	case stepper.StepMode8:
		ms1, ms2 = false, false
	case stepper.StepMode16:
		ms1, ms2 = true, true
	case stepper.StepMode32:
		ms1, ms2 = false, true
	case stepper.StepMode64:
		ms1, ms2 = true, false
	}

	if err := setPin(d.ms1, ms1); err != nil {
		return err
	}
	return setPin(d.ms2, ms2)
}

// EnableDriver takes the chip out of standby and re-enables the driver
// stage.
func (d *TMC2209) EnableDriver() error {
	if d.enableN == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}
	if err := d.enableN.SetLow(); err != nil {
		return err
	}
	return d.standby.SetLow()
}

func setPin(p stepper.OutputPin, high bool) error {
	if high {
		return p.SetHigh()
	}
	return p.SetLow()
}
