// Package motor runs the motion engine from a background goroutine and
// offers a thread-safe command surface for the CLI and the web API.
//
// The engine itself is single-goroutine by contract, so every touch of the
// controller goes through the service mutex, including the polling loop.
package motor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stepgo/stepgo/internal/debug"
	"github.com/stepgo/stepgo/pkg/motion"
	"github.com/stepgo/stepgo/pkg/stepper"
)

// Status is a snapshot of the motor state for the API and CLI.
type Status struct {
	Chip       string `json:"chip"`
	Step       int    `json:"step"`
	Target     int    `json:"target"`
	Moving     bool   `json:"moving"`
	Microsteps int    `json:"microsteps,omitempty"` // 0 = unknown or fixed by DIP switches
	LastError  string `json:"last_error,omitempty"`
}

// Service wraps a motion controller. Create it with New, then run the
// polling loop with Run; commands may be issued from any goroutine.
type Service struct {
	mu              sync.Mutex
	ctrl            *motion.Controller
	chip            string
	defaultVelocity float64

	target     int
	moving     bool
	microsteps int
	lastErr    string
}

// New creates a motor service for the given chip name and controller.
// defaultVelocity is used for moves that do not specify one.
func New(chip string, ctrl *motion.Controller, defaultVelocity float64) *Service {
	return &Service{
		ctrl:            ctrl,
		chip:            chip,
		defaultVelocity: defaultVelocity,
	}
}

// Status returns a consistent snapshot of the motor state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Chip:       s.chip,
		Step:       s.ctrl.CurrentStep(),
		Target:     s.target,
		Moving:     s.moving || s.ctrl.Moving(),
		Microsteps: s.microsteps,
		LastError:  s.lastErr,
	}
}

// MoveTo arms a motion to targetStep. A maxVelocity of 0 selects the
// configured default. An in-progress motion is overridden: only the newest
// target is pursued.
func (s *Service) MoveTo(targetStep int, maxVelocity float64) error {
	if maxVelocity < 0 {
		return fmt.Errorf("max velocity must be >= 0, got %g", maxVelocity)
	}
	if maxVelocity == 0 {
		maxVelocity = s.defaultVelocity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	debug.Move(targetStep, maxVelocity)
	s.ctrl.MoveToPosition(maxVelocity, targetStep)
	s.target = targetStep
	s.moving = s.ctrl.Moving()
	s.lastErr = ""
	return nil
}

// ResetPosition overwrites the position counter without moving the motor.
func (s *Service) ResetPosition(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debug.Info("Position counter reset to step %d", step)
	s.ctrl.ResetPosition(step)
	s.target = step
}

// SetStepMode changes the microstepping resolution. It blocks for the
// mode-change signal sequence (microseconds to a few hundred microseconds
// depending on the chip) and fails with motion.ErrBusy while a move is in
// progress.
func (s *Service) SetStepMode(microsteps int) error {
	mode, err := stepper.StepModeFromInt(microsteps)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	op, err := s.ctrl.SetStepMode(mode)
	if err != nil {
		return err
	}
	if err := op.Wait(); err != nil {
		return err
	}
	debug.StepMode(microsteps)
	s.microsteps = microsteps
	return nil
}

// Run polls the motion engine until ctx is cancelled. It backs off while the
// motor is at rest and after errors, and spins tightly during a motion to
// keep the step timing honest.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		s.mu.Lock()
		moving, err := s.ctrl.Update()
		wasMoving := s.moving
		s.moving = moving
		step := s.ctrl.CurrentStep()
		if err != nil {
			s.lastErr = err.Error()
		}
		s.mu.Unlock()

		if err != nil {
			debug.Error(err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if wasMoving && !moving {
			debug.Arrived(step)
		}
		if !moving {
			time.Sleep(2 * time.Millisecond)
		}
	}
}
