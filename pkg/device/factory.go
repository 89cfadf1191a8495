package device

import (
	"fmt"
	"log/slog"
	"runtime"
)

// NewProvider creates a new device provider with the given configuration.
// If cfg.Backend is BackendAuto, the best available backend is selected.
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = detectBestBackend()
	}

	logger.Info("creating device provider",
		"backend", backend,
		"environment_index", cfg.EnvironmentIndex,
		"user_index", cfg.UserIndex,
	)

	switch backend {
	case BackendMock:
		return NewMockProvider(cfg, logger), nil
	case BackendGoCV:
		return newGoCVProvider(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// detectBestBackend returns the best available backend for the current platform.
func detectBestBackend() Backend {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return BackendGoCV
	default:
		return BackendMock
	}
}

// AvailableBackends returns the list of backends available on this platform.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock}

	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		backends = append(backends, BackendGoCV)
	}

	return backends
}
