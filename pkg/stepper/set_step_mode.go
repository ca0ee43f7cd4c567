package stepper

// SetStepModeOp is the non-blocking operation behind Stepper.SetStepMode.
//
// Unlike the other signal-timing operations it has two timed phases: after
// the mode-select outputs have been written and the setup time has elapsed,
// the driver chip is re-enabled, and the configuration must then be held
// stable for the chip's hold time before the operation reports completion.
type SetStepModeOp struct {
	mode   StepMode
	driver StepModeControl
	timer  Timer
	state  opState
	result error
}

// NewSetStepModeOp creates the operation directly, for callers that do not
// go through the Stepper facade.
func NewSetStepModeOp(mode StepMode, driver StepModeControl, timer Timer) *SetStepModeOp {
	return &SetStepModeOp{
		mode:   mode,
		driver: driver,
		timer:  timer,
	}
}

// Poll drives the operation forward. It returns (false, nil) while a settle
// window is still open. Errors are terminal.
func (op *SetStepModeOp) Poll() (bool, error) {
	switch op.state {
	case opInitial:
		if err := op.driver.ApplyStepMode(op.mode); err != nil {
			return op.finish(&SignalError{Cause: CausePin, Err: err})
		}
		if err := op.start(op.driver.ModeSetupTime()); err != nil {
			return op.finish(err)
		}
		op.state = opWaiting
		return false, nil

	case opWaiting:
		expired, err := op.timer.Poll()
		if err != nil {
			return op.finish(&SignalError{Cause: CauseTimer, Err: err})
		}
		if !expired {
			return false, nil
		}

		if err := op.driver.EnableDriver(); err != nil {
			return op.finish(&SignalError{Cause: CausePin, Err: err})
		}
		if err := op.start(op.driver.ModeHoldTime()); err != nil {
			return op.finish(err)
		}
		op.state = opHolding
		return false, nil

	case opHolding:
		expired, err := op.timer.Poll()
		if err != nil {
			return op.finish(&SignalError{Cause: CauseTimer, Err: err})
		}
		if !expired {
			return false, nil
		}
		return op.finish(nil)

	default:
		return true, op.result
	}
}

func (op *SetStepModeOp) start(ns Nanoseconds) error {
	ticks, err := NanosToTicks(ns, op.timer.Freq())
	if err != nil {
		return err
	}
	if err := op.timer.Start(ticks); err != nil {
		return &SignalError{Cause: CauseTimer, Err: err}
	}
	return nil
}

func (op *SetStepModeOp) finish(err error) (bool, error) {
	op.state = opFinished
	op.result = err
	return true, err
}

// Wait polls in a tight loop until the operation has finished.
func (op *SetStepModeOp) Wait() error {
	for {
		done, err := op.Poll()
		if done {
			return err
		}
	}
}

// Release hands back the driver and timer the operation was using.
func (op *SetStepModeOp) Release() (StepModeControl, Timer) {
	return op.driver, op.timer
}
