package stepper

import (
	"errors"
	"testing"
)

func TestStepOp_PulseShape(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	tm := &fakeTimer{}

	op := NewStepOp(drv, tm)

	done, err := op.Poll()
	if done || err != nil {
		t.Fatalf("first poll: done=%v err=%v, want pending", done, err)
	}

	// STEP must be HIGH and stay HIGH until the pulse length has elapsed.
	edges := rec.edgesFor("step")
	if len(edges) != 1 || !edges[0].high {
		t.Fatalf("expected STEP raised after first poll, got %v", edges)
	}
	if len(tm.started) != 1 || tm.started[0] < Ticks(drv.pulse) {
		t.Errorf("pulse countdown = %v ticks, want >= %d", tm.started, drv.pulse)
	}

	if err := op.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	edges = rec.edgesFor("step")
	if len(edges) != 2 || edges[1].high {
		t.Fatalf("expected STEP lowered on completion, got %v", edges)
	}
}

func TestStepOp_PulseHeldWhilePending(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	tm := &fakeTimer{}

	op := NewStepOp(drv, tm)
	op.Poll()

	// Drain all but one tick of the countdown; the pulse must still be up.
	for tm.remaining > 1 {
		done, err := op.Poll()
		if done || err != nil {
			t.Fatalf("poll while counting: done=%v err=%v", done, err)
		}
		if got := rec.edgesFor("step"); len(got) != 1 {
			t.Fatalf("STEP changed before pulse length elapsed: %v", got)
		}
	}
}

func TestStepOp_IdempotentCompletion(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	op := NewStepOp(drv, &fakeTimer{})

	if err := op.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for i := 0; i < 3; i++ {
		done, err := op.Poll()
		if !done || err != nil {
			t.Fatalf("poll %d after completion: done=%v err=%v", i, done, err)
		}
	}
	if got := rec.edgesFor("step"); len(got) != 2 {
		t.Errorf("polling a finished op must not pulse again, got %v", got)
	}
}

func TestStepOp_PinError(t *testing.T) {
	rec := &recorder{}
	drv := newFakeDriver(rec)
	pinErr := errors.New("short circuit")
	drv.step.fail = pinErr

	err := NewStepOp(drv, &fakeTimer{}).Wait()

	var sigErr *SignalError
	if !errors.As(err, &sigErr) || sigErr.Cause != CausePin {
		t.Fatalf("expected SignalError with CausePin, got %v", err)
	}
	if !errors.Is(err, pinErr) {
		t.Error("original pin error not preserved")
	}
}

func TestStepOp_PinUnavailable(t *testing.T) {
	err := NewStepOp(dq542maLike{}, &fakeTimer{}).Wait()

	var sigErr *SignalError
	if !errors.As(err, &sigErr) || sigErr.Cause != CausePinUnavailable {
		t.Fatalf("expected SignalError with CausePinUnavailable, got %v", err)
	}
}

// dq542maLike is a step-capable driver whose pin was never provided.
type dq542maLike struct{}

func (dq542maLike) PulseLength() Nanoseconds { return 100 }

func (dq542maLike) Step() (OutputPin, error) {
	return nil, errors.New("STEP pin not provided")
}
