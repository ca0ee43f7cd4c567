package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes caps the size of a config file read by Load.
const MaxConfigFileBytes = 1 << 20

// Chips that DriverConfig.Chip may name.
var knownChips = []string{"drv8825", "a4988", "stspin220", "tmc2209", "dq542ma"}

// DriverConfig selects and wires a stepper driver chip.
type DriverConfig struct {
	Chip       string `yaml:"chip"`        // drv8825, a4988, stspin220, tmc2209 or dq542ma
	StepPin    int    `yaml:"step_pin"`    // BCM number of the STEP pin
	DirPin     int    `yaml:"dir_pin"`     // BCM number of the DIR pin
	EnablePin  int    `yaml:"enable_pin"`  // nRESET / STBY/RESET / ENN, 0 = not wired
	StandbyPin int    `yaml:"standby_pin"` // TMC2209 STDBY, 0 = not wired
	ModePins   []int  `yaml:"mode_pins"`   // MODE0..2 / MS1..3 / MODE1..2, chip-specific count
}

// TimerConfig describes the software countdown timer.
type TimerConfig struct {
	FreqHz uint32 `yaml:"freq_hz"` // tick frequency; 0 = 1 GHz (1 tick per ns)
}

// MotionConfig holds motion engine parameters.
type MotionConfig struct {
	MaxVelocity float64 `yaml:"max_velocity"` // steps per second
	StepMode    int     `yaml:"step_mode"`    // microsteps per full step, 0 = leave chip as is
}

// WebConfig configures the HTTP control API.
type WebConfig struct {
	Listen string `yaml:"listen"` // address for the API server, e.g. ":8080"
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Driver   DriverConfig   `yaml:"driver"`
	Timer    TimerConfig    `yaml:"timer"`
	Motion   MotionConfig   `yaml:"motion"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath checks that path points at a .yaml file inside a
// configs/ directory, to keep user-supplied paths from wandering around the
// filesystem.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	if strings.Contains(filepath.ToSlash(abs), "../") {
		return fmt.Errorf("config path escapes its directory: %s", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Driver.Chip == "" {
		return nil, fmt.Errorf("driver.chip is required")
	}
	if !isKnownChip(cfg.Driver.Chip) {
		return nil, fmt.Errorf("driver.chip %q is unknown (supported: %s)",
			cfg.Driver.Chip, strings.Join(knownChips, ", "))
	}
	if cfg.Driver.StepPin <= 0 {
		return nil, fmt.Errorf("driver.step_pin is required")
	}
	if cfg.Driver.DirPin <= 0 {
		return nil, fmt.Errorf("driver.dir_pin is required")
	}
	if cfg.Motion.MaxVelocity < 0 {
		return nil, fmt.Errorf("motion.max_velocity must be >= 0, got %.2f", cfg.Motion.MaxVelocity)
	}
	if cfg.Motion.MaxVelocity == 0 {
		cfg.Motion.MaxVelocity = 500 // reasonable default
	}
	if cfg.Motion.StepMode < 0 || cfg.Motion.StepMode > 256 {
		return nil, fmt.Errorf("motion.step_mode must be between 1 and 256, got %d", cfg.Motion.StepMode)
	}
	if cfg.Timer.FreqHz == 0 {
		cfg.Timer.FreqHz = 1_000_000_000 // 1 tick per nanosecond
	}
	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}
	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be between 0 and 4, got %d", cfg.Defaults.DebugLevel)
	}

	return &cfg, nil
}

func isKnownChip(chip string) bool {
	for _, k := range knownChips {
		if chip == k {
			return true
		}
	}
	return false
}

// HasStepModeControl reports whether the config wires the pins that step mode
// control needs for the selected chip.
func (c *Config) HasStepModeControl() bool {
	switch c.Driver.Chip {
	case "drv8825", "a4988":
		return c.Driver.EnablePin > 0 && len(c.Driver.ModePins) == 3
	case "stspin220":
		return c.Driver.EnablePin > 0 && len(c.Driver.ModePins) == 2
	case "tmc2209":
		return c.Driver.EnablePin > 0 && c.Driver.StandbyPin > 0 && len(c.Driver.ModePins) == 2
	default:
		return false
	}
}
