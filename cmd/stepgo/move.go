package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepgo/stepgo/internal/hw/gpio"
	"github.com/stepgo/stepgo/pkg/stepper"
)

var (
	moveVelocity float64
	moveStepMode int
)

var moveCmd = &cobra.Command{
	Use:   "move <target-step>",
	Short: "Move the motor to an absolute step position and exit",
	Long: `Move the motor to the given absolute step position, blocking until
the motion completes. Position 0 is wherever the motor was at startup.

Examples:
  stepgo move 400                 full turn forward on a 200-step motor at 1/2 microstepping
  stepgo move -- -200             negative targets need the flag terminator
  stepgo move 400 --velocity 800  override the configured velocity
  stepgo move 400 --stepmode 16   switch to 1/16 microstepping first`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Float64Var(&moveVelocity, "velocity", 0, "max velocity in steps/s (0 = config default)")
	moveCmd.Flags().IntVar(&moveStepMode, "stepmode", 0, "microstepping to apply before moving (0 = leave as configured)")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	target, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("target step must be an integer: %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	velocity := cfg.Motion.MaxVelocity
	if moveVelocity > 0 {
		velocity = moveVelocity
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return fmt.Errorf("init GPIO: %w", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	svc, ctrl, err := buildMotor(gpioDriver, cfg)
	if err != nil {
		return err
	}
	if moveStepMode > 0 {
		if err := svc.SetStepMode(moveStepMode); err != nil {
			return fmt.Errorf("set step mode: %w", err)
		}
	}

	s := stepper.New(ctrl)
	if err := s.EnableMotionControl(); err != nil {
		return err
	}
	op, err := s.MoveTo(velocity, target)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("interrupted at step %d\n", ctrl.CurrentStep())
			return ctx.Err()
		default:
		}
		done, err := op.Poll()
		if err != nil {
			return fmt.Errorf("motion failed at step %d: %w", ctrl.CurrentStep(), err)
		}
		if done {
			break
		}
	}

	fmt.Printf("at step %d\n", ctrl.CurrentStep())
	return nil
}
