package stepper

// MoveToOp is the non-blocking operation behind Stepper.MoveTo. The first
// Poll arms the motion controller with the target; every further Poll calls
// the controller's Update until it reports the motion complete.
type MoveToOp struct {
	driver      MotionControl
	maxVelocity float64
	targetStep  int
	state       opState
	result      error
}

// NewMoveToOp creates the operation directly, for callers that do not go
// through the Stepper facade.
func NewMoveToOp(driver MotionControl, maxVelocity float64, targetStep int) *MoveToOp {
	return &MoveToOp{
		driver:      driver,
		maxVelocity: maxVelocity,
		targetStep:  targetStep,
	}
}

// Poll drives the operation forward. It returns (false, nil) while the
// motion is still in progress.
func (op *MoveToOp) Poll() (bool, error) {
	switch op.state {
	case opInitial:
		op.driver.MoveToPosition(op.maxVelocity, op.targetStep)
		op.state = opWaiting
		return false, nil

	case opWaiting:
		moving, err := op.driver.Update()
		if err != nil {
			// Not terminal. A failed Update leaves the controller armed,
			// and the caller may keep polling.
			return false, err
		}
		if moving {
			return false, nil
		}
		op.state = opFinished
		return true, nil

	default:
		return true, op.result
	}
}

// Wait polls in a tight loop until the motion has completed, returning the
// first error encountered.
func (op *MoveToOp) Wait() error {
	for {
		done, err := op.Poll()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Release hands back the motion controller the operation was using.
func (op *MoveToOp) Release() MotionControl {
	return op.driver
}
