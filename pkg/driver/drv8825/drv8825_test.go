package drv8825

import (
	"errors"
	"testing"

	"github.com/stepgo/stepgo/pkg/stepper"
)

var _ stepper.DirectionControl = (*DRV8825)(nil)
var _ stepper.StepControl = (*DRV8825)(nil)
var _ stepper.StepModeControl = (*DRV8825)(nil)

type fakePin struct {
	level bool
	set   bool
	fail  error
}

func (p *fakePin) SetHigh() error {
	if p.fail != nil {
		return p.fail
	}
	p.level, p.set = true, true
	return nil
}

func (p *fakePin) SetLow() error {
	if p.fail != nil {
		return p.fail
	}
	p.level, p.set = false, true
	return nil
}

func TestPinAccessors(t *testing.T) {
	d := New()
	if _, err := d.Dir(); err == nil {
		t.Error("Dir without a pin should fail")
	}
	if _, err := d.Step(); err == nil {
		t.Error("Step without a pin should fail")
	}

	dir, step := &fakePin{}, &fakePin{}
	d.WithDirectionControl(dir).WithStepControl(step)
	if p, err := d.Dir(); err != nil || p != stepper.OutputPin(dir) {
		t.Errorf("Dir = %v, %v", p, err)
	}
	if p, err := d.Step(); err != nil || p != stepper.OutputPin(step) {
		t.Errorf("Step = %v, %v", p, err)
	}
}

func TestApplyStepMode_ModePins(t *testing.T) {
	cases := []struct {
		mode       stepper.StepMode
		m0, m1, m2 bool
	}{
		{stepper.StepModeFull, false, false, false},
		{stepper.StepMode2, true, false, false},
		{stepper.StepMode4, false, true, false},
		{stepper.StepMode8, true, true, false},
		{stepper.StepMode16, false, false, true},
		{stepper.StepMode32, true, true, true},
	}
	for _, tc := range cases {
		reset := &fakePin{level: true}
		m0, m1, m2 := &fakePin{}, &fakePin{}, &fakePin{}
		d := New().WithStepModeControl(reset, m0, m1, m2)

		if err := d.ApplyStepMode(tc.mode); err != nil {
			t.Fatalf("%v: ApplyStepMode: %v", tc.mode, err)
		}
		if reset.level {
			t.Errorf("%v: nRESET not pulled low", tc.mode)
		}
		if m0.level != tc.m0 || m1.level != tc.m1 || m2.level != tc.m2 {
			t.Errorf("%v: mode pins = %v %v %v, want %v %v %v",
				tc.mode, m0.level, m1.level, m2.level, tc.m0, tc.m1, tc.m2)
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
	err := d.ApplyStepMode(stepper.StepMode256)
	var invalid *stepper.InvalidStepModeError
	if !errors.As(err, &invalid) {
		t.Fatalf("ApplyStepMode(256) = %v, want InvalidStepModeError", err)
	}
}

func TestApplyStepMode_WithoutPins(t *testing.T) {
	d := New()
	var capErr *stepper.CapabilityError
	if err := d.ApplyStepMode(stepper.StepMode16); !errors.As(err, &capErr) {
		t.Errorf("ApplyStepMode without pins = %v, want CapabilityError", err)
	}
	if err := d.EnableDriver(); !errors.As(err, &capErr) {
		t.Errorf("EnableDriver without pins = %v, want CapabilityError", err)
	}
}

func TestApplyStepMode_PinError(t *testing.T) {
	fault := errors.New("pin fault")
	d := New().WithStepModeControl(&fakePin{}, &fakePin{fail: fault}, &fakePin{}, &fakePin{})
	if err := d.ApplyStepMode(stepper.StepMode2); !errors.Is(err, fault) {
		t.Errorf("ApplyStepMode = %v, want the pin fault", err)
	}
}

func TestTimingConstants(t *testing.T) {
	d := New()
	if d.DirSetupTime() != 650 || d.ModeSetupTime() != 650 {
		t.Error("setup time must be 650 ns per datasheet")
	}
	if d.ModeHoldTime() != 650 {
		t.Error("hold time must be 650 ns per datasheet")
	}
	if d.PulseLength() != 1900 {
		t.Error("pulse length must be 1900 ns per datasheet")
	}
	if got := len(d.SupportedStepModes()); got != 6 {
		t.Errorf("supported modes = %d, want 6", got)
	}
}
