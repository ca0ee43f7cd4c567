package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stepgo/stepgo/internal/config"
	"github.com/stepgo/stepgo/internal/debug"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "stepgo",
	Short: "Stepper motor control for STEP/DIR drivers",
	Long: `StepGo drives stepper motor driver chips (DRV8825, A4988, STSPIN220,
TMC2209, DQ542MA) over GPIO, with software motion control on top of the
chips' STEP/DIR interface.

The driver chip, pin wiring and motion defaults come from a YAML config
file; see configs/default.yaml for a commented example. With mock_gpio
enabled everything runs on a development machine without hardware.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c",
		filepath.Join("configs", "default.yaml"), "path to config file")
}

// loadConfig validates the config path, loads the file and initializes the
// debug system from it.
func loadConfig() (*config.Config, error) {
	if err := config.ValidateConfigPath(cfgPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Value("Config path", cfgPath)
	debug.Value("Driver chip", cfg.Driver.Chip)
	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
