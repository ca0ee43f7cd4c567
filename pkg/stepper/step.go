package stepper

// StepOp is the non-blocking operation behind Stepper.Step. It emits a
// single step pulse: the first Poll raises STEP and arms the driver's
// minimum pulse length on the timer; once the countdown expires, STEP is
// lowered again and the operation finishes.
type StepOp struct {
	driver StepControl
	timer  Timer
	state  opState
	result error
}

// NewStepOp creates the operation directly, for callers that do not go
// through the Stepper facade.
func NewStepOp(driver StepControl, timer Timer) *StepOp {
	return &StepOp{
		driver: driver,
		timer:  timer,
	}
}

// Poll drives the operation forward. It returns (false, nil) while the pulse
// is still being held HIGH. Errors are terminal.
func (op *StepOp) Poll() (bool, error) {
	switch op.state {
	case opInitial:
		pin, err := op.driver.Step()
		if err != nil {
			return op.finish(&SignalError{Cause: CausePinUnavailable, Err: err})
		}
		if err := pin.SetHigh(); err != nil {
			return op.finish(&SignalError{Cause: CausePin, Err: err})
		}

		ticks, err := NanosToTicks(op.driver.PulseLength(), op.timer.Freq())
		if err != nil {
			return op.finish(err)
		}
		if err := op.timer.Start(ticks); err != nil {
			return op.finish(&SignalError{Cause: CauseTimer, Err: err})
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

		pin, err := op.driver.Step()
		if err != nil {
			return op.finish(&SignalError{Cause: CausePinUnavailable, Err: err})
		}
		if err := pin.SetLow(); err != nil {
			return op.finish(&SignalError{Cause: CausePin, Err: err})
		}
		return op.finish(nil)

	default:
		return true, op.result
	}
}

func (op *StepOp) finish(err error) (bool, error) {
	op.state = opFinished
	op.result = err
	return true, err
}

// Wait polls in a tight loop until the operation has finished.
func (op *StepOp) Wait() error {
	for {
		done, err := op.Poll()
		if done {
			return err
		}
	}
}

// Release hands back the driver and timer the operation was using.
func (op *StepOp) Release() (StepControl, Timer) {
	return op.driver, op.timer
}
