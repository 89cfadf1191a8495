package web

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cellarview/go-cellarcam/pkg/capture"
	"github.com/cellarview/go-cellarcam/pkg/device"
	"github.com/cellarview/go-cellarcam/pkg/encode"
)

// SessionState is the session JSON shape the front end consumes.
type SessionState struct {
	ID          string `json:"id,omitempty"`
	Facing      string `json:"facing,omitempty"`
	Status      string `json:"status"`
	MultiDevice bool   `json:"multi_device"`
}

func sessionState(s *capture.Session) SessionState {
	if s == nil {
		return SessionState{Status: string(capture.StatusIdle)}
	}
	return SessionState{
		ID:          s.ID,
		Facing:      string(s.Facing),
		Status:      string(s.Status()),
		MultiDevice: s.MultiDevice(),
	}
}

// OpenSessionRequest is the request body for opening a session.
type OpenSessionRequest struct {
	Facing string `json:"facing"`
}

// handleDevices returns the enumerated video inputs.
func (s *Server) handleDevices(c *fiber.Ctx) error {
	devices, err := s.provider.EnumerateVideoInputs(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if devices == nil {
		devices = []device.Descriptor{}
	}
	return c.JSON(devices)
}

// handleSessionStatus returns the current session state.
func (s *Server) handleSessionStatus(c *fiber.Ctx) error {
	return c.JSON(sessionState(s.pipeline.Manager().Session()))
}

// handleOpenSession opens a capture session and starts the preview feed.
func (s *Server) handleOpenSession(c *fiber.Ctx) error {
	var req OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed request body",
			})
		}
	}
	if req.Facing == "" {
		req.Facing = string(device.FacingEnvironment)
	}
	facing, err := device.ParseFacing(req.Facing)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	session, err := s.pipeline.Manager().Open(c.UserContext(), facing)
	if err != nil {
		return captureErrorResponse(c, err)
	}

	s.startPreview(session)
	s.broadcastStatus()
	return c.JSON(sessionState(session))
}

// handleCloseSession tears down the current session.
func (s *Server) handleCloseSession(c *fiber.Ctx) error {
	s.stopPreview()
	s.pipeline.Manager().Shutdown()
	s.broadcastStatus()
	return c.JSON(sessionState(nil))
}

// handleFlipSession switches the session to the opposite facing.
func (s *Server) handleFlipSession(c *fiber.Ctx) error {
	s.stopPreview()

	session, err := s.pipeline.Manager().SwitchFacing(c.UserContext())
	if err != nil {
		s.broadcastStatus()
		return captureErrorResponse(c, err)
	}

	s.startPreview(session)
	s.broadcastStatus()
	return c.JSON(sessionState(session))
}

// handleCapture produces a label artifact. With a live session it grabs
// from the running stream; otherwise it runs a one-shot open-grab-close
// using the facing query parameter.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	var (
		artifact encode.Artifact
		err      error
	)

	if session := s.pipeline.Manager().Session(); session != nil {
		artifact, err = s.pipeline.CaptureFrom(c.UserContext(), session)
	} else {
		facing, ferr := device.ParseFacing(c.Query("facing", string(device.FacingEnvironment)))
		if ferr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": ferr.Error(),
			})
		}
		artifact, err = s.pipeline.CaptureLabel(c.UserContext(), facing)
	}
	if err != nil {
		return captureErrorResponse(c, err)
	}

	return sendArtifact(c, artifact)
}

// handleNormalize compresses an uploaded image into an avatar artifact.
func (s *Server) handleNormalize(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing image upload",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	defer file.Close()

	src, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	name := fileHeader.Filename
	if name == "" {
		name = uuid.NewString() + ".jpg"
	}

	artifact, err := s.pipeline.CompressAvatar(src, name)
	if err != nil {
		return encodeErrorResponse(c, err)
	}

	return sendArtifact(c, artifact)
}

// sendArtifact returns the finished JPEG with its metadata in headers.
func sendArtifact(c *fiber.Ctx, a encode.Artifact) error {
	c.Set(fiber.HeaderContentType, a.MIMEType)
	c.Set("X-Artifact-Name", a.SourceName)
	c.Set("X-Artifact-Width", strconv.Itoa(a.Width))
	c.Set("X-Artifact-Height", strconv.Itoa(a.Height))
	return c.Send(a.Bytes)
}

// captureErrorResponse maps the capture taxonomy onto HTTP statuses,
// keeping the stable kind visible to the front end.
func captureErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, capture.ErrSuperseded) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"kind":  "superseded",
			"error": err.Error(),
		})
	}
	if errors.Is(err, capture.ErrNoSession) || errors.Is(err, capture.ErrNotReady) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"kind":  "no_session",
			"error": err.Error(),
		})
	}

	status := fiber.StatusInternalServerError
	switch capture.KindOf(err) {
	case capture.KindPermissionDenied:
		status = fiber.StatusForbidden
	case capture.KindDeviceNotFound:
		status = fiber.StatusNotFound
	case capture.KindDeviceBusy:
		status = fiber.StatusConflict
	case capture.KindConstraintUnsatisfiable:
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{
		"kind":  string(capture.KindOf(err)),
		"error": err.Error(),
	})
}

// encodeErrorResponse maps the encode taxonomy onto HTTP statuses.
func encodeErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	kind := "encode_backend_unavailable"
	if errors.Is(err, encode.ErrUnsupportedFormat) {
		status = fiber.StatusUnsupportedMediaType
		kind = "unsupported_format"
	}
	return c.Status(status).JSON(fiber.Map{
		"kind":  kind,
		"error": err.Error(),
	})
}
