// Package config provides configuration helpers for cellarcam commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the capture service.
const (
	DefaultListenPort = "8090"
	DefaultBackend    = "auto"
	DefaultFacing     = "environment"
)

// ListenPort returns the HTTP listen port from CELLARCAM_PORT.
// Falls back to the default if not set.
func ListenPort() string {
	if port := os.Getenv("CELLARCAM_PORT"); port != "" {
		return port
	}
	return DefaultListenPort
}

// DeviceBackend returns the device backend name from CELLARCAM_BACKEND.
// Valid values: "auto", "gocv", "mock".
func DeviceBackend() string {
	if backend := os.Getenv("CELLARCAM_BACKEND"); backend != "" {
		return backend
	}
	return DefaultBackend
}

// DefaultFacingDirection returns the facing direction from CELLARCAM_FACING.
// Valid values: "environment", "user".
func DefaultFacingDirection() string {
	if facing := os.Getenv("CELLARCAM_FACING"); facing != "" {
		return facing
	}
	return DefaultFacing
}

// EnvironmentDeviceIndex returns the camera index used for the
// environment-facing (rear) camera, from CELLARCAM_ENV_INDEX.
func EnvironmentDeviceIndex() int {
	return envInt("CELLARCAM_ENV_INDEX", 0)
}

// UserDeviceIndex returns the camera index used for the user-facing
// (front) camera, from CELLARCAM_USER_INDEX.
func UserDeviceIndex() int {
	return envInt("CELLARCAM_USER_INDEX", 1)
}

// LogLevel returns the log level from CELLARCAM_LOG_LEVEL.
func LogLevel() string {
	if level := os.Getenv("CELLARCAM_LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
