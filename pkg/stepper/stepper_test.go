package stepper

import (
	"errors"
	"testing"
)

// pinEvent records a single edge on a named pin.
type pinEvent struct {
	pin  string
	high bool
}

// recorder collects edges across all fake pins, so tests can check ordering
// between signals.
type recorder struct {
	events []pinEvent
}

func (r *recorder) edgesFor(pin string) []pinEvent {
	var result []pinEvent
	for _, e := range r.events {
		if e.pin == pin {
			result = append(result, e)
		}
	}
	return result
}

// fakePin is a recording OutputPin. Writes can be made to fail.
type fakePin struct {
	name string
	rec  *recorder
	fail error
}

func (p *fakePin) SetHigh() error {
	if p.fail != nil {
		return p.fail
	}
	p.rec.events = append(p.rec.events, pinEvent{pin: p.name, high: true})
	return nil
}

func (p *fakePin) SetLow() error {
	if p.fail != nil {
		return p.fail
	}
	p.rec.events = append(p.rec.events, pinEvent{pin: p.name, high: false})
	return nil
}

// fakeTimer is a manually advanced countdown: every Poll consumes one tick.
// Started durations are recorded so tests can check timing invariants.
type fakeTimer struct {
	freq      uint32
	remaining Ticks
	started   []Ticks
	startErr  error
	pollErr   error
}

func (t *fakeTimer) Freq() uint32 {
	if t.freq == 0 {
		return 1_000_000_000 // 1 tick = 1 ns
	}
	return t.freq
}

func (t *fakeTimer) Start(ticks Ticks) error {
	if t.startErr != nil {
		return t.startErr
	}
	t.started = append(t.started, ticks)
	t.remaining = ticks
	return nil
}

func (t *fakeTimer) Poll() (bool, error) {
	if t.pollErr != nil {
		return false, t.pollErr
	}
	if t.remaining > 0 {
		t.remaining--
		return false, nil
	}
	return true, nil
}

// fakeDriver implements all three signal capabilities with fake pins.
type fakeDriver struct {
	dir  *fakePin
	step *fakePin

	modeSetup Nanoseconds
	modeHold  Nanoseconds
	dirSetup  Nanoseconds
	pulse     Nanoseconds

	appliedModes []StepMode
	enables      int
	applyErr     error
	enableErr    error
}

func newFakeDriver(rec *recorder) *fakeDriver {
	return &fakeDriver{
		dir:      &fakePin{name: "dir", rec: rec},
		step:     &fakePin{name: "step", rec: rec},
		dirSetup: 650,
		pulse:    1900,
		// Arbitrary but distinct, so tests can tell the phases apart.
		modeSetup: 1000,
		modeHold:  2000,
	}
}

func (d *fakeDriver) DirSetupTime() Nanoseconds { return d.dirSetup }

func (d *fakeDriver) Dir() (OutputPin, error) { return d.dir, nil }

func (d *fakeDriver) PulseLength() Nanoseconds { return d.pulse }

func (d *fakeDriver) Step() (OutputPin, error) { return d.step, nil }

func (d *fakeDriver) ModeSetupTime() Nanoseconds { return d.modeSetup }

func (d *fakeDriver) ModeHoldTime() Nanoseconds { return d.modeHold }

func (d *fakeDriver) SupportedStepModes() []StepMode {
	return []StepMode{StepModeFull, StepMode2, StepMode4, StepMode8, StepMode16}
}

func (d *fakeDriver) ApplyStepMode(mode StepMode) error {
	if d.applyErr != nil {
		return d.applyErr
	}
	if err := ValidateStepMode(mode, d.SupportedStepModes()); err != nil {
		return err
	}
	d.appliedModes = append(d.appliedModes, mode)
	return nil
}

func (d *fakeDriver) EnableDriver() error {
	if d.enableErr != nil {
		return d.enableErr
	}
	d.enables++
	return nil
}

// stepOnlyDriver supports step control but nothing else.
type stepOnlyDriver struct {
	step *fakePin
}

func (d *stepOnlyDriver) PulseLength() Nanoseconds { return 100 }

func (d *stepOnlyDriver) Step() (OutputPin, error) { return d.step, nil }

func TestStepper_EnableDirectionControl(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	tm := &fakeTimer{}

	s := New(drv)
	if err := s.EnableDirectionControl(Backward, tm); err != nil {
		t.Fatalf("EnableDirectionControl: %v", err)
	}

	// Enabling must have asserted the initial direction synchronously.
	edges := rec.edgesFor("dir")
	if len(edges) != 1 || edges[0].high {
		t.Errorf("expected one LOW edge on dir, got %v", edges)
	}
	if len(tm.started) != 1 || tm.started[0] < Ticks(drv.dirSetup) {
		t.Errorf("setup wait too short: started %v, want >= %d", tm.started, drv.dirSetup)
	}
}

func TestStepper_CapabilityNotSupported(t *testing.T) {
	rec := &recorder{}
	s := New(&stepOnlyDriver{step: &fakePin{name: "step", rec: rec}})

	err := s.EnableDirectionControl(Forward, &fakeTimer{})
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapabilityError, got %v", err)
	}
}

func TestStepper_CapabilityNotEnabled(t *testing.T) {
	rec := &recorder{}
	s := New(newFakeDriver(rec))

	if _, err := s.Step(&fakeTimer{}); err == nil {
		t.Error("Step before EnableStepControl should fail")
	}
	if _, err := s.SetDirection(Forward, &fakeTimer{}); err == nil {
		t.Error("SetDirection before EnableDirectionControl should fail")
	}
	if _, err := s.SetStepMode(StepMode16, &fakeTimer{}); err == nil {
		t.Error("SetStepMode before EnableStepModeControl should fail")
	}
	if _, err := s.PulseLength(); err == nil {
		t.Error("PulseLength before EnableStepControl should fail")
	}
}

func TestStepper_StepAfterEnable(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	s := New(drv)
	if err := s.EnableStepControl(); err != nil {
		t.Fatalf("EnableStepControl: %v", err)
	}

	op, err := s.Step(&fakeTimer{})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := op.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	edges := rec.edgesFor("step")
	if len(edges) != 2 || !edges[0].high || edges[1].high {
		t.Errorf("expected HIGH then LOW on step, got %v", edges)
	}

	ns, err := s.PulseLength()
	if err != nil || ns != drv.pulse {
		t.Errorf("PulseLength = %d, %v; want %d", ns, err, drv.pulse)
	}
}

func TestStepper_EnableStepModeControl(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	s := New(drv)

	if err := s.EnableStepModeControl(StepMode4, &fakeTimer{}); err != nil {
		t.Fatalf("EnableStepModeControl: %v", err)
	}
	if len(drv.appliedModes) != 1 || drv.appliedModes[0] != StepMode4 {
		t.Errorf("applied modes = %v, want [4]", drv.appliedModes)
	}
	if drv.enables != 1 {
		t.Errorf("driver enabled %d times, want 1", drv.enables)
	}
}

func TestStepper_EnableStepModeControlInvalidMode(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	s := New(drv)

	err := s.EnableStepModeControl(StepMode256, &fakeTimer{})
	var modeErr *InvalidStepModeError
	if !errors.As(err, &modeErr) {
		t.Fatalf("expected InvalidStepModeError, got %v", err)
	}

	// A failed enable must not leave the capability usable.
	if _, err := s.SetStepMode(StepMode4, &fakeTimer{}); err == nil {
		t.Error("SetStepMode after failed enable should fail")
	}
}
