// Package pipeline wires the capture session manager and the encoder
// into the two flows the wine-cellar front end uses: photographing a
// bottle label with the camera, and compressing an uploaded image into
// an avatar. Finished artifacts are handed to caller-provided callbacks;
// upload, persistence, and UI feedback stay with the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cellarview/go-cellarcam/pkg/capture"
	"github.com/cellarview/go-cellarcam/pkg/device"
	"github.com/cellarview/go-cellarcam/pkg/encode"
)

// Pipeline runs the image acquisition flows.
type Pipeline struct {
	manager *capture.Manager
	cfg     Config
	logger  *slog.Logger

	// OnCapture receives the finished label artifact from a capture.
	OnCapture func(encode.Artifact)

	// OnCompressed receives the finished avatar artifact from an upload.
	OnCompressed func(encode.Artifact)

	// OnError receives exactly one call per terminal failure. Superseded
	// capture requests are discarded silently and never reach it.
	OnError func(error)
}

// New creates a pipeline over a capture manager.
func New(manager *capture.Manager, cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		manager: manager,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Manager exposes the underlying session manager for callers that drive
// the session lifecycle themselves (open a viewfinder, flip, close).
func (p *Pipeline) Manager() *capture.Manager {
	return p.manager
}

// CaptureLabel opens a session on the requested facing, grabs one frame,
// encodes it at label quality, and closes the session on every exit
// path. The artifact is returned and also delivered to OnCapture.
func (p *Pipeline) CaptureLabel(ctx context.Context, facing device.Facing) (encode.Artifact, error) {
	session, err := p.manager.Open(ctx, facing)
	if err != nil {
		if errors.Is(err, capture.ErrSuperseded) {
			return encode.Artifact{}, err
		}
		p.emitError(err)
		return encode.Artifact{}, err
	}
	defer p.manager.Close(session)

	return p.CaptureFrom(ctx, session)
}

// CaptureFrom grabs one frame from an already-open session and encodes
// it at label quality. The session keeps running; callers driving a live
// viewfinder use this and close the session themselves.
func (p *Pipeline) CaptureFrom(ctx context.Context, session *capture.Session) (encode.Artifact, error) {
	frame, err := p.manager.GrabFrame(ctx, session)
	if err != nil {
		p.emitError(err)
		return encode.Artifact{}, err
	}

	name := fmt.Sprintf("label-%s.jpg", session.ID)
	artifact, err := encode.EncodeFrame(frame, p.cfg.LabelQuality, name)
	if err != nil {
		p.emitError(err)
		return encode.Artifact{}, err
	}

	p.logger.Info("label captured",
		"source", artifact.SourceName,
		"width", artifact.Width,
		"height", artifact.Height,
		"bytes", artifact.SizeBytes,
	)

	if p.OnCapture != nil {
		p.OnCapture(artifact)
	}
	return artifact, nil
}

// CompressAvatar normalizes uploaded image bytes into a bounded avatar
// artifact and delivers it to OnCompressed. No capture session is
// involved.
func (p *Pipeline) CompressAvatar(src []byte, name string) (encode.Artifact, error) {
	artifact, err := encode.Normalize(src, p.cfg.AvatarMaxEdge, p.cfg.AvatarQuality, name)
	if err != nil {
		p.emitError(err)
		return encode.Artifact{}, err
	}

	p.logger.Info("avatar compressed",
		"source", artifact.SourceName,
		"width", artifact.Width,
		"height", artifact.Height,
		"bytes", artifact.SizeBytes,
	)

	if p.OnCompressed != nil {
		p.OnCompressed(artifact)
	}
	return artifact, nil
}

func (p *Pipeline) emitError(err error) {
	p.logger.Error("pipeline failure", "error", err)
	if p.OnError != nil {
		p.OnError(err)
	}
}
