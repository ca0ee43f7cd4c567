package stepper

// SetDirectionOp is the non-blocking operation behind Stepper.SetDirection.
//
// The operation does not start until Poll has been called once. The first
// call asserts the DIR level and arms the driver's direction setup time on
// the timer; subsequent calls check the countdown. Once finished, Poll keeps
// returning the same result without further side effects.
type SetDirectionOp struct {
	direction Direction
	driver    DirectionControl
	timer     Timer
	state     opState
	result    error
}

type opState int

const (
	opInitial opState = iota
	opWaiting
	opHolding // only used by SetStepModeOp
	opFinished
)

// NewSetDirectionOp creates the operation directly, for callers that do not
// go through the Stepper facade.
func NewSetDirectionOp(direction Direction, driver DirectionControl, timer Timer) *SetDirectionOp {
	return &SetDirectionOp{
		direction: direction,
		driver:    driver,
		timer:     timer,
	}
}

// Poll drives the operation forward. It returns (false, nil) while the setup
// time has not elapsed. Errors are terminal: the operation stays finished
// and reports the same error on every further call.
func (op *SetDirectionOp) Poll() (bool, error) {
	switch op.state {
	case opInitial:
		pin, err := op.driver.Dir()
		if err != nil {
			return op.finish(&SignalError{Cause: CausePinUnavailable, Err: err})
		}
		if op.direction == Forward {
			err = pin.SetHigh()
		} else {
			err = pin.SetLow()
		}
		if err != nil {
			return op.finish(&SignalError{Cause: CausePin, Err: err})
		}

		ticks, err := NanosToTicks(op.driver.DirSetupTime(), op.timer.Freq())
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
		return op.finish(nil)

	default:
		return true, op.result
	}
}

func (op *SetDirectionOp) finish(err error) (bool, error) {
	op.state = opFinished
	op.result = err
	return true, err
}

// Wait polls in a tight loop until the operation has finished.
func (op *SetDirectionOp) Wait() error {
	for {
		done, err := op.Poll()
		if done {
			return err
		}
	}
}

// Release hands back the driver and timer the operation was using.
func (op *SetDirectionOp) Release() (DirectionControl, Timer) {
	return op.driver, op.timer
}
