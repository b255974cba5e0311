//go:build linux

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/aaearon/authlive/internal/scan"
	"github.com/blackjack/webcam"
)

// Open acquires the device exclusively and starts streaming.
func (c *V4L2) Open(ctx context.Context) (scan.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cam, err := webcam.Open(c.device)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.device, err)
	}

	format, err := pickFormat(cam.GetSupportedFormats())
	if err != nil {
		cam.Close()
		return nil, err
	}

	f, w, h, err := cam.SetImageFormat(webcam.PixelFormat(format), uint32(c.width), uint32(c.height))
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("failed to set image format on %s: %w", c.device, err)
	}
	c.logger.Debug("camera format negotiated", "device", c.device, "format", FourCC(uint32(f)), "width", w, "height", h)

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("failed to start streaming on %s: %w", c.device, err)
	}

	return &v4l2Stream{
		cam:     cam,
		format:  uint32(f),
		width:   int(w),
		height:  int(h),
		timeout: c.timeoutSeconds(),
		logger:  c.logger,
	}, nil
}

func pickFormat(supported map[webcam.PixelFormat]string) (uint32, error) {
	for _, want := range preferredFormats {
		if _, ok := supported[webcam.PixelFormat(want)]; ok {
			return want, nil
		}
	}
	return 0, ErrNoFormat
}

// frameSource is the part of *webcam.Webcam a stream drives.
type frameSource interface {
	WaitForFrame(timeout uint32) error
	ReadFrame() ([]byte, error)
	StopStreaming() error
	Close() error
}

// v4l2Stream reads frames without holding mu across the device wait, so
// Close never blocks behind a pending frame. When Close lands during a read,
// the reader releases the device once the wait returns.
type v4l2Stream struct {
	mu      sync.Mutex
	cam     frameSource
	closed  bool
	reading int
	format  uint32
	width   int
	height  int
	timeout uint32
	logger  *slog.Logger
}

func (s *v4l2Stream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	s.reading++
	cam := s.cam
	s.mu.Unlock()

	img, err := s.read(cam)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading--
	if s.closed {
		if s.reading == 0 {
			if err := s.releaseLocked(); err != nil {
				s.logger.Debug("failed to release camera", "error", err)
			}
		}
		return nil, errClosed
	}
	return img, err
}

func (s *v4l2Stream) read(cam frameSource) (image.Image, error) {
	err := cam.WaitForFrame(s.timeout)
	var timeout *webcam.Timeout
	if errors.As(err, &timeout) {
		return nil, scan.ErrNoFrame
	}
	if err != nil {
		return nil, err
	}

	buf, err := cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, scan.ErrNoFrame
	}

	img, err := convertFrame(s.format, buf, s.width, s.height)
	if err != nil {
		// A corrupt frame is skipped rather than ending the session.
		s.logger.Debug("dropping frame", "error", err)
		return nil, scan.ErrNoFrame
	}
	return img, nil
}

// Close marks the stream closed and returns without waiting. If a Frame call
// is in flight, that call releases the device when its wait ends.
func (s *v4l2Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.reading > 0 {
		return nil
	}
	return s.releaseLocked()
}

func (s *v4l2Stream) releaseLocked() error {
	if s.cam == nil {
		return nil
	}
	stopErr := s.cam.StopStreaming()
	closeErr := s.cam.Close()
	s.cam = nil
	return errors.Join(stopErr, closeErr)
}
