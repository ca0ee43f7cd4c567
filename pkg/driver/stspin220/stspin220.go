// Package stspin220 controls the STMicroelectronics STSPIN220 stepper motor
// driver through its STEP/DIR interface.
//
// The STSPIN220 multiplexes its step mode selection over the STEP/MODE3 and
// DIR/MODE4 pins: while the chip is in standby, the four MODEx levels select
// the resolution; once it leaves standby, the same pins carry the STEP and
// DIR signals. Enabling step mode control therefore requires the STEP and
// DIR pins to have been provided already.
//
// Timing constants are from the datasheet:
// https://www.st.com/resource/en/datasheet/stspin220.pdf
package stspin220

import (
	"errors"

	"github.com/stepgo/stepgo/pkg/stepper"
)

const (
	// DirSetupTime is the minimum time DIR must be stable before a STEP
	// edge.
	DirSetupTime stepper.Nanoseconds = 100

	// ModeSetupTime is the minimum time the MODEx signals must be stable
	// before the chip leaves standby.
	ModeSetupTime stepper.Nanoseconds = 1_000

	// ModeHoldTime is the minimum time the MODEx signals must be held after
	// the chip has left standby.
	ModeHoldTime stepper.Nanoseconds = 100_000

	// PulseLength is the minimum STCK high time.
	PulseLength stepper.Nanoseconds = 100
)

var stepModes = []stepper.StepMode{
	stepper.StepModeFull,
	stepper.StepMode2,
	stepper.StepMode4,
	stepper.StepMode8,
	stepper.StepMode16,
	stepper.StepMode32,
	stepper.StepMode64,
	stepper.StepMode128,
	stepper.StepMode256,
}

var errNoDirPin = errors.New("stspin220: DIR/MODE4 pin not provided")
var errNoStepPin = errors.New("stspin220: STEP/MODE3 pin not provided")

// STSPIN220 is the driver API for a single chip. Create it with New, then
// outfit it with the output pins for the capabilities you need.
type STSPIN220 struct {
	standbyReset stepper.OutputPin
	mode1        stepper.OutputPin
	mode2        stepper.OutputPin
	stepMode3    stepper.OutputPin
	dirMode4     stepper.OutputPin
}

// New creates an STSPIN220 with no pins attached.
func New() *STSPIN220 {
	return &STSPIN220{}
}

// WithDirectionControl provides the pin wired to DIR/MODE4.
func (d *STSPIN220) WithDirectionControl(dirMode4 stepper.OutputPin) *STSPIN220 {
	d.dirMode4 = dirMode4
	return d
}

// WithStepControl provides the pin wired to STEP/MODE3.
func (d *STSPIN220) WithStepControl(stepMode3 stepper.OutputPin) *STSPIN220 {
	d.stepMode3 = stepMode3
	return d
}

// WithStepModeControl provides the pins wired to STBY/RESET, MODE1 and
// MODE2, enabling microstepping control. MODE3 and MODE4 are shared with the
// STEP and DIR pins, which must be provided as well.
func (d *STSPIN220) WithStepModeControl(standbyReset, mode1, mode2 stepper.OutputPin) *STSPIN220 {
	d.standbyReset = standbyReset
	d.mode1 = mode1
	d.mode2 = mode2
	return d
}

func (d *STSPIN220) DirSetupTime() stepper.Nanoseconds {
	return DirSetupTime
}

func (d *STSPIN220) Dir() (stepper.OutputPin, error) {
	if d.dirMode4 == nil {
		return nil, errNoDirPin
	}
	return d.dirMode4, nil
}

func (d *STSPIN220) PulseLength() stepper.Nanoseconds {
	return PulseLength
}

func (d *STSPIN220) Step() (stepper.OutputPin, error) {
	if d.stepMode3 == nil {
		return nil, errNoStepPin
	}
	return d.stepMode3, nil
}

func (d *STSPIN220) ModeSetupTime() stepper.Nanoseconds {
	return ModeSetupTime
}

func (d *STSPIN220) ModeHoldTime() stepper.Nanoseconds {
	return ModeHoldTime
}

func (d *STSPIN220) SupportedStepModes() []stepper.StepMode {
	return stepModes
}

// ApplyStepMode forces the chip into standby and writes the four MODEx
// signals for the requested resolution.
func (d *STSPIN220) ApplyStepMode(mode stepper.StepMode) error {
	if err := stepper.ValidateStepMode(mode, stepModes); err != nil {
		return err
	}
	if d.standbyReset == nil || d.stepMode3 == nil || d.dirMode4 == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}

	if err := d.standbyReset.SetLow(); err != nil {
		return err
	}

	var m1, m2, m3, m4 bool
	switch mode {
	case stepper.StepModeFull:
		m1, m2, m3, m4 = false, false, false, false
	case stepper.StepMode2:
		m1, m2, m3, m4 = true, false, true, false
	case stepper.StepMode4:
		m1, m2, m3, m4 = false, true, false, true
	case stepper.StepMode8:
		m1, m2, m3, m4 = true, true, true, false
	case stepper.StepMode16:
		m1, m2, m3, m4 = true, true, true, true
	case stepper.StepMode32:
		m1, m2, m3, m4 = false, true, false, false
	case stepper.StepMode64:
		m1, m2, m3, m4 = true, true, false, true
	case stepper.StepMode128:
		m1, m2, m3, m4 = true, false, false, false
	case stepper.StepMode256:
		m1, m2, m3, m4 = true, true, false, false
	}

	if err := setPin(d.mode1, m1); err != nil {
		return err
	}
	if err := setPin(d.mode2, m2); err != nil {
		return err
	}
	if err := setPin(d.stepMode3, m3); err != nil {
		return err
	}
	return setPin(d.dirMode4, m4)
}

// EnableDriver releases STBY/RESET, taking the chip out of standby.
func (d *STSPIN220) EnableDriver() error {
	if d.standbyReset == nil {
		return &stepper.CapabilityError{Capability: "step mode control"}
	}
	return d.standbyReset.SetHigh()
}

func setPin(p stepper.OutputPin, high bool) error {
	if high {
		return p.SetHigh()
	}
	return p.SetLow()
}
