package main

import (
	"fmt"

	"github.com/stepgo/stepgo/internal/config"
	"github.com/stepgo/stepgo/internal/debug"
	"github.com/stepgo/stepgo/internal/hw/clock"
	"github.com/stepgo/stepgo/internal/hw/gpio"
	"github.com/stepgo/stepgo/internal/logic/motor"
	"github.com/stepgo/stepgo/pkg/driver/a4988"
	"github.com/stepgo/stepgo/pkg/driver/dq542ma"
	"github.com/stepgo/stepgo/pkg/driver/drv8825"
	"github.com/stepgo/stepgo/pkg/driver/stspin220"
	"github.com/stepgo/stepgo/pkg/driver/tmc2209"
	"github.com/stepgo/stepgo/pkg/motion"
	"github.com/stepgo/stepgo/pkg/profile"
)

// buildDriver constructs the configured chip driver with its pins attached.
func buildDriver(g gpio.Driver, cfg *config.Config) (any, error) {
	dirPin, err := gpio.NewOutputPin(g, cfg.Driver.DirPin)
	if err != nil {
		return nil, fmt.Errorf("setup DIR pin %d: %w", cfg.Driver.DirPin, err)
	}
	stepPin, err := gpio.NewOutputPin(g, cfg.Driver.StepPin)
	if err != nil {
		return nil, fmt.Errorf("setup STEP pin %d: %w", cfg.Driver.StepPin, err)
	}

	modeControl := cfg.HasStepModeControl()
	var enablePin, standbyPin *gpio.Pin
	var modePins []*gpio.Pin
	if modeControl {
		enablePin, err = gpio.NewOutputPin(g, cfg.Driver.EnablePin)
		if err != nil {
			return nil, fmt.Errorf("setup enable pin %d: %w", cfg.Driver.EnablePin, err)
		}
		if cfg.Driver.StandbyPin > 0 {
			standbyPin, err = gpio.NewOutputPin(g, cfg.Driver.StandbyPin)
			if err != nil {
				return nil, fmt.Errorf("setup standby pin %d: %w", cfg.Driver.StandbyPin, err)
			}
		}
		for _, n := range cfg.Driver.ModePins {
			p, err := gpio.NewOutputPin(g, n)
			if err != nil {
				return nil, fmt.Errorf("setup mode pin %d: %w", n, err)
			}
			modePins = append(modePins, p)
		}
	}

	switch cfg.Driver.Chip {
	case "drv8825":
		d := drv8825.New().WithDirectionControl(dirPin).WithStepControl(stepPin)
		if modeControl {
			d.WithStepModeControl(enablePin, modePins[0], modePins[1], modePins[2])
		}
		return d, nil
	case "a4988":
		d := a4988.New().WithDirectionControl(dirPin).WithStepControl(stepPin)
		if modeControl {
			d.WithStepModeControl(enablePin, modePins[0], modePins[1], modePins[2])
		}
		return d, nil
	case "stspin220":
		d := stspin220.New().WithDirectionControl(dirPin).WithStepControl(stepPin)
		if modeControl {
			d.WithStepModeControl(enablePin, modePins[0], modePins[1])
		}
		return d, nil
	case "tmc2209":
		d := tmc2209.New().WithDirectionControl(dirPin).WithStepControl(stepPin)
		if modeControl {
			d.WithStepModeControl(enablePin, standbyPin, modePins[0], modePins[1])
		}
		return d, nil
	case "dq542ma":
		return dq542ma.New().WithDirectionControl(dirPin).WithStepControl(stepPin), nil
	default:
		return nil, fmt.Errorf("unsupported driver chip: %s", cfg.Driver.Chip)
	}
}

// buildMotor wires GPIO, chip driver, timer and motion engine into a motor
// service, and applies the configured initial step mode.
func buildMotor(g gpio.Driver, cfg *config.Config) (*motor.Service, *motion.Controller, error) {
	drv, err := buildDriver(g, cfg)
	if err != nil {
		return nil, nil, err
	}
	motionDrv, ok := drv.(motion.Driver)
	if !ok {
		return nil, nil, fmt.Errorf("driver %s lacks direction or step control", cfg.Driver.Chip)
	}

	tm := clock.New(cfg.Timer.FreqHz)
	ctrl := motion.New(motionDrv, tm, profile.NewFlat(), motion.NanosDelayToTicks(cfg.Timer.FreqHz))
	svc := motor.New(cfg.Driver.Chip, ctrl, cfg.Motion.MaxVelocity)

	if cfg.Motion.StepMode > 0 {
		if !cfg.HasStepModeControl() {
			return nil, nil, fmt.Errorf("motion.step_mode set but %s step mode pins are not wired", cfg.Driver.Chip)
		}
		debug.Info("Applying initial step mode 1/%d", cfg.Motion.StepMode)
		if err := svc.SetStepMode(cfg.Motion.StepMode); err != nil {
			return nil, nil, fmt.Errorf("apply initial step mode: %w", err)
		}
	}

	return svc, ctrl, nil
}
