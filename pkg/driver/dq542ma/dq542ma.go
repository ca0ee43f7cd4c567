// Package dq542ma controls the Wantai DQ542MA stepper motor driver through
// its STEP/DIR interface.
//
// The DQ542MA selects its microstepping resolution with physical DIP
// switches, so it provides no step mode control capability.
//
// Timing constants are from
// https://wiki.linuxcnc.org/cgi-bin/wiki.pl?Stepper_Drive_Timing
package dq542ma

import (
	"errors"

	"github.com/stepgo/stepgo/pkg/stepper"
)

const (
	// SetupTime is the minimum time DIR must be stable before a STEP edge.
	SetupTime stepper.Nanoseconds = 500

	// PulseLength is the minimum STEP high time.
	PulseLength stepper.Nanoseconds = 5050
)

var errNoDirPin = errors.New("dq542ma: DIR pin not provided")
var errNoStepPin = errors.New("dq542ma: STEP pin not provided")

// DQ542MA is the driver API for a single unit. Create it with New, then
// outfit it with the output pins for the capabilities you need.
type DQ542MA struct {
	step stepper.OutputPin
	dir  stepper.OutputPin
}

// New creates a DQ542MA with no pins attached.
func New() *DQ542MA {
	return &DQ542MA{}
}

// WithDirectionControl provides the pin wired to DIR.
func (d *DQ542MA) WithDirectionControl(dir stepper.OutputPin) *DQ542MA {
	d.dir = dir
	return d
}

// WithStepControl provides the pin wired to STEP (PUL).
func (d *DQ542MA) WithStepControl(step stepper.OutputPin) *DQ542MA {
	d.step = step
	return d
}

func (d *DQ542MA) DirSetupTime() stepper.Nanoseconds {
	return SetupTime
}

func (d *DQ542MA) Dir() (stepper.OutputPin, error) {
	if d.dir == nil {
		return nil, errNoDirPin
	}
	return d.dir, nil
}

func (d *DQ542MA) PulseLength() stepper.Nanoseconds {
	return PulseLength
}

func (d *DQ542MA) Step() (stepper.OutputPin, error) {
	if d.step == nil {
		return nil, errNoStepPin
	}
	return d.step, nil
}
