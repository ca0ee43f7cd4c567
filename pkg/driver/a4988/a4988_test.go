package a4988

import (
	"errors"
	"testing"

	"github.com/stepgo/stepgo/pkg/stepper"
)

var _ stepper.DirectionControl = (*A4988)(nil)
var _ stepper.StepControl = (*A4988)(nil)
var _ stepper.StepModeControl = (*A4988)(nil)

type fakePin struct {
	level bool
	fail  error
}

func (p *fakePin) SetHigh() error {
	if p.fail != nil {
		return p.fail
	}
	p.level = true
	return nil
}

func (p *fakePin) SetLow() error {
	if p.fail != nil {
		return p.fail
	}
	p.level = false
	return nil
}

func TestApplyStepMode_ModePins(t *testing.T) {
	cases := []struct {
		mode          stepper.StepMode
		ms1, ms2, ms3 bool
	}{
		{stepper.StepModeFull, false, false, false},
		{stepper.StepMode2, true, false, false},
		{stepper.StepMode4, false, true, false},
		{stepper.StepMode8, true, true, false},
		{stepper.StepMode16, true, true, true},
	}
	for _, tc := range cases {
		reset := &fakePin{level: true}
		ms1, ms2, ms3 := &fakePin{}, &fakePin{}, &fakePin{}
		d := New().WithStepModeControl(reset, ms1, ms2, ms3)

		if err := d.ApplyStepMode(tc.mode); err != nil {
			t.Fatalf("%v: ApplyStepMode: %v", tc.mode, err)
		}
		if reset.level {
			t.Errorf("%v: nRESET not pulled low", tc.mode)
		}
		if ms1.level != tc.ms1 || ms2.level != tc.ms2 || ms3.level != tc.ms3 {
			t.Errorf("%v: MSx = %v %v %v, want %v %v %v",
				tc.mode, ms1.level, ms2.level, ms3.level, tc.ms1, tc.ms2, tc.ms3)
		}

		if err := d.EnableDriver(); err != nil {
			t.Fatalf("%v: EnableDriver: %v", tc.mode, err)
		}
		if !reset.level {
			t.Errorf("%v: nRESET not released", tc.mode)
		}
	}
}

func TestApplyStepMode_InvalidMode(t *testing.T) {
	d := New().WithStepModeControl(&fakePin{}, &fakePin{}, &fakePin{}, &fakePin{})
	var invalid *stepper.InvalidStepModeError
	if err := d.ApplyStepMode(stepper.StepMode32); !errors.As(err, &invalid) {
		t.Fatalf("ApplyStepMode(32) = %v, want InvalidStepModeError", err)
	}
}

func TestPinAccessors(t *testing.T) {
	d := New()
	if _, err := d.Dir(); err == nil {
		t.Error("Dir without a pin should fail")
	}
	if _, err := d.Step(); err == nil {
		t.Error("Step without a pin should fail")
	}
	d.WithDirectionControl(&fakePin{}).WithStepControl(&fakePin{})
	if _, err := d.Dir(); err != nil {
		t.Errorf("Dir: %v", err)
	}
	if _, err := d.Step(); err != nil {
		t.Errorf("Step: %v", err)
	}
}

func TestTimingConstants(t *testing.T) {
	d := New()
	if d.DirSetupTime() != 200 || d.ModeSetupTime() != 200 ||
		d.ModeHoldTime() != 200 || d.PulseLength() != 200 {
		t.Error("all timing figures must be 200 ns per datasheet")
	}
	if got := len(d.SupportedStepModes()); got != 5 {
		t.Errorf("supported modes = %d, want 5", got)
	}
}
