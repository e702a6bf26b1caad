package render

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Config holds the tuning constants of the camera core.
type Config struct {
	MinFOV        float64 `mapstructure:"minFov"`
	MaxFOV        float64 `mapstructure:"maxFov"`
	FramingMargin float64 `mapstructure:"framingMargin"`
	TargetPadding float64 `mapstructure:"targetPadding"`
	NearPadding   float64 `mapstructure:"nearPadding"`
	FarPadding    float64 `mapstructure:"farPadding"`
	PitchClamp    float64 `mapstructure:"pitchClamp"`
	Sensitivity   float64 `mapstructure:"sensitivity"`
	ScrollStep    float64 `mapstructure:"scrollStep"`
	NearFloor     float64 `mapstructure:"nearFloor"`
}

// DefaultConfig returns the constants the viewer ships with.
func DefaultConfig() Config {
	return Config{
		MinFOV:        1,
		MaxFOV:        45,
		FramingMargin: 4,
		TargetPadding: 2,
		NearPadding:   3,
		FarPadding:    3,
		PitchClamp:    89,
		Sensitivity:   0.1,
		ScrollStep:    1,
		NearFloor:     1e-3,
	}
}

// Validate checks the invariants the fitter and orientation model rely on.
func (c Config) Validate() error {
	var errs []error
	if c.MinFOV <= 0 || c.MinFOV > c.MaxFOV {
		errs = append(errs, fmt.Errorf("minFov must be in (0, maxFov], got %g", c.MinFOV))
	}
	if c.MaxFOV >= 180 {
		errs = append(errs, fmt.Errorf("maxFov must be below 180, got %g", c.MaxFOV))
	}
	if c.PitchClamp <= 0 || c.PitchClamp >= 90 {
		errs = append(errs, fmt.Errorf("pitchClamp must be in (0, 90), got %g", c.PitchClamp))
	}
	if c.NearFloor <= 0 {
		errs = append(errs, fmt.Errorf("nearFloor must be positive, got %g", c.NearFloor))
	}
	if c.FramingMargin <= 0 {
		errs = append(errs, fmt.Errorf("framingMargin must be positive, got %g", c.FramingMargin))
	}
	if c.TargetPadding < 0 || c.NearPadding < 0 || c.FarPadding < 0 {
		errs = append(errs, errors.New("padding factors must not be negative"))
	}
	return errors.Join(errs...)
}

// ClampFOV restricts fov to the configured range.
func (c Config) ClampFOV(fov float64) float64 {
	return Clamp(fov, c.MinFOV, c.MaxFOV)
}

// Clamp restricts x to [lo, hi].
func Clamp[T constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
