package stepper

import (
	"errors"
	"testing"
)

func TestSetStepModeOp_TwoPhases(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	tm := &fakeTimer{}

	op := NewSetStepModeOp(StepMode16, drv, tm)

	// Phase one: mode applied, setup countdown armed, driver not yet
	// re-enabled.
	done, err := op.Poll()
	if done || err != nil {
		t.Fatalf("first poll: done=%v err=%v", done, err)
	}
	if len(drv.appliedModes) != 1 || drv.appliedModes[0] != StepMode16 {
		t.Fatalf("applied modes = %v, want [16]", drv.appliedModes)
	}
	if drv.enables != 0 {
		t.Fatal("driver re-enabled before setup time elapsed")
	}
	if len(tm.started) != 1 || tm.started[0] < Ticks(drv.modeSetup) {
		t.Errorf("setup countdown = %v, want >= %d", tm.started, drv.modeSetup)
	}

	// Wait out the setup window; the poll that sees the expiry re-enables
	// the driver and arms the hold countdown, still pending.
	for tm.remaining > 0 {
		if done, err := op.Poll(); done || err != nil {
			t.Fatalf("poll during setup: done=%v err=%v", done, err)
		}
	}
	done, err = op.Poll()
	if done || err != nil {
		t.Fatalf("poll at setup expiry: done=%v err=%v, want pending", done, err)
	}
	if drv.enables != 1 {
		t.Fatalf("driver enabled %d times after setup, want 1", drv.enables)
	}
	if len(tm.started) != 2 || tm.started[1] < Ticks(drv.modeHold) {
		t.Errorf("hold countdown = %v, want second start >= %d", tm.started, drv.modeHold)
	}

	// Phase two: hold window.
	if err := op.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if drv.enables != 1 {
		t.Errorf("driver enabled %d times total, want 1", drv.enables)
	}
}

func TestSetStepModeOp_IdempotentCompletion(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	op := NewSetStepModeOp(StepMode8, drv, &fakeTimer{})

	if err := op.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for i := 0; i < 3; i++ {
		if done, err := op.Poll(); !done || err != nil {
			t.Fatalf("poll %d after completion: done=%v err=%v", i, done, err)
		}
	}
	if len(drv.appliedModes) != 1 || drv.enables != 1 {
		t.Errorf("finished op must not touch the driver again: applied=%v enables=%d",
			drv.appliedModes, drv.enables)
	}
}

func TestSetStepModeOp_InvalidMode(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)

	err := NewSetStepModeOp(StepMode256, drv, &fakeTimer{}).Wait()

	var sigErr *SignalError
	if !errors.As(err, &sigErr) || sigErr.Cause != CausePin {
		t.Fatalf("expected SignalError with CausePin, got %v", err)
	}
	var modeErr *InvalidStepModeError
	if !errors.As(err, &modeErr) || modeErr.Mode != StepMode256 {
		t.Fatalf("expected wrapped InvalidStepModeError for 256, got %v", err)
	}
}

func TestSetStepModeOp_EnableError(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	drv.enableErr = errors.New("standby pin stuck")

	err := NewSetStepModeOp(StepMode8, drv, &fakeTimer{}).Wait()

	var sigErr *SignalError
	if !errors.As(err, &sigErr) || sigErr.Cause != CausePin {
		t.Fatalf("expected SignalError with CausePin, got %v", err)
	}
}
