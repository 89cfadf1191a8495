// cellarcam - one-shot capture and normalize tool.
//
// Usage:
//
//	cellarcam capture [-facing environment|user] [-out label.jpg]
//	cellarcam avatar -in photo.png [-out avatar.jpg]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cellarview/go-cellarcam/internal/config"
	"github.com/cellarview/go-cellarcam/internal/log"
	"github.com/cellarview/go-cellarcam/pkg/capture"
	"github.com/cellarview/go-cellarcam/pkg/device"
	"github.com/cellarview/go-cellarcam/pkg/encode"
	"github.com/cellarview/go-cellarcam/pkg/pipeline"
)

func main() {
	log.Init(config.LogLevel())

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "capture":
		runCapture(os.Args[2:])
	case "avatar":
		runAvatar(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  cellarcam capture [-facing environment|user] [-out label.jpg]")
	fmt.Fprintln(os.Stderr, "  cellarcam avatar -in photo.png [-out avatar.jpg]")
	os.Exit(2)
}

func newPipeline() *pipeline.Pipeline {
	devCfg := device.DefaultConfig()
	devCfg.Backend = device.Backend(config.DeviceBackend())
	devCfg.EnvironmentIndex = config.EnvironmentDeviceIndex()
	devCfg.UserIndex = config.UserDeviceIndex()

	provider, err := device.NewProvider(devCfg, log.L())
	if err != nil {
		fatal("create device provider", err)
	}

	manager := capture.NewManager(provider, log.L())
	pipe, err := pipeline.New(manager, pipeline.DefaultConfig(), log.L())
	if err != nil {
		fatal("create pipeline", err)
	}
	return pipe
}

func runCapture(args []string) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	facingFlag := fs.String("facing", config.DefaultFacingDirection(), "camera facing direction")
	out := fs.String("out", "label.jpg", "output file")
	fs.Parse(args)

	facing, err := device.ParseFacing(*facingFlag)
	if err != nil {
		fatal("parse facing", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	artifact, err := newPipeline().CaptureLabel(ctx, facing)
	if err != nil {
		fatal("capture", err)
	}

	writeArtifact(*out, artifact)
}

func runAvatar(args []string) {
	fs := flag.NewFlagSet("avatar", flag.ExitOnError)
	in := fs.String("in", "", "input image file")
	out := fs.String("out", "avatar.jpg", "output file")
	fs.Parse(args)

	if *in == "" {
		usage()
	}

	src, err := os.ReadFile(*in)
	if err != nil {
		fatal("read input", err)
	}

	artifact, err := newPipeline().CompressAvatar(src, *in)
	if err != nil {
		fatal("normalize", err)
	}

	writeArtifact(*out, artifact)
}

func writeArtifact(path string, a encode.Artifact) {
	if err := os.WriteFile(path, a.Bytes, 0644); err != nil {
		fatal("write output", err)
	}
	fmt.Printf("wrote %s (%dx%d, %d bytes)\n", path, a.Width, a.Height, a.SizeBytes)
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "cellarcam: %s: %v\n", what, err)
	os.Exit(1)
}
