package device

import (
	"fmt"
	"time"
)

// Backend represents the device backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendGoCV uses OpenCV video capture (V4L2 on Linux, AVFoundation on macOS).
	BackendGoCV Backend = "gocv"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds device backend configuration.
type Config struct {
	// Backend specifies which device backend to use.
	// Default: "auto" (selects best available for platform)
	Backend Backend `json:"backend"`

	// EnvironmentIndex is the camera index for the environment-facing device.
	EnvironmentIndex int `json:"environment_index"`

	// UserIndex is the camera index for the user-facing device.
	UserIndex int `json:"user_index"`

	// WarmupTimeout bounds how long a backend may spend producing the
	// first frame after opening a device.
	WarmupTimeout time.Duration `json:"warmup_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:          BackendAuto,
		EnvironmentIndex: 0,
		UserIndex:        1,
		WarmupTimeout:    2 * time.Second,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.EnvironmentIndex < 0 {
		return fmt.Errorf("environment_index must be >= 0, got %d", c.EnvironmentIndex)
	}
	if c.UserIndex < 0 {
		return fmt.Errorf("user_index must be >= 0, got %d", c.UserIndex)
	}
	if c.EnvironmentIndex == c.UserIndex {
		return fmt.Errorf("environment_index and user_index must differ, both %d", c.UserIndex)
	}
	if c.WarmupTimeout <= 0 {
		return fmt.Errorf("warmup_timeout must be positive, got %v", c.WarmupTimeout)
	}
	return nil
}

// IndexFor returns the configured camera index for a facing direction.
func (c *Config) IndexFor(f Facing) int {
	if f == FacingUser {
		return c.UserIndex
	}
	return c.EnvironmentIndex
}
