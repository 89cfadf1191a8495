// Capture server - runs the cellarcam capture service.
//
// The wine-cellar front end talks to this process for camera sessions,
// label capture, avatar normalization, and the live viewfinder feed.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cellarview/go-cellarcam/internal/config"
	"github.com/cellarview/go-cellarcam/internal/log"
	"github.com/cellarview/go-cellarcam/pkg/capture"
	"github.com/cellarview/go-cellarcam/pkg/device"
	"github.com/cellarview/go-cellarcam/pkg/pipeline"
	"github.com/cellarview/go-cellarcam/pkg/web"
)

func main() {
	log.Init(config.LogLevel())

	devCfg := device.DefaultConfig()
	devCfg.Backend = device.Backend(config.DeviceBackend())
	devCfg.EnvironmentIndex = config.EnvironmentDeviceIndex()
	devCfg.UserIndex = config.UserDeviceIndex()

	provider, err := device.NewProvider(devCfg, log.L())
	if err != nil {
		log.Error("failed to create device provider", "error", err)
		os.Exit(1)
	}

	manager := capture.NewManager(provider, log.L())

	pipe, err := pipeline.New(manager, pipeline.DefaultConfig(), log.L())
	if err != nil {
		log.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(config.ListenPort(), pipe, provider, log.L())

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
