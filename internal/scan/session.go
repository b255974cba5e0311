// Package scan acquires a TOTP secret from an otpauth QR code: it owns a
// camera stream for the lifetime of a session, attempts a decode on every
// frame, and parses the decoded payload.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// Camera is the capability to request a video stream.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an acquired camera. Close stops all underlying capture and must
// be safe to call while a Frame call is in flight.
type Stream interface {
	// Frame blocks until the next frame. It returns ErrNoFrame when none
	// arrived in time and ErrStreamEnded when a finite source is exhausted.
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// State is a session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateSucceeded
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateSucceeded:
		return "succeeded"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateCancelled || s == StateFailed
}

// Result is the outcome of a decode attempt.
type Result struct {
	// Done is set once a code was decoded and its secret extracted.
	Done    bool
	Secret  string
	Ignored []string
}

// Session is one camera-acquisition-to-decode-result lifecycle. A session is
// single use: once it reaches a terminal state a new one must be created.
type Session struct {
	camera  Camera
	decoder Decoder
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	stream   Stream
	err      error
	result   Result
	attempts int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates an idle session.
func NewSession(cam Camera, dec Decoder, opts ...Option) *Session {
	s := &Session{
		camera:  cam,
		decoder: dec,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that failed the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Active reports whether the session is requesting or streaming.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRequesting || s.state == StateStreaming
}

// Attempts returns the number of frames read so far.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Open acquires the camera. A failure moves the session to StateFailed with
// ErrCameraUnavailable; no retry is made. If the session is cancelled while
// the camera is being acquired, the stream is released immediately and
// ErrSessionClosed is returned.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = StateRequesting
	s.mu.Unlock()

	s.logger.Debug("requesting camera")
	stream, err := s.camera.Open(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.state != StateRequesting || ctx.Err() != nil {
			s.finishLocked(StateCancelled, nil)
			return ErrSessionClosed
		}
		if !errors.Is(err, ErrCameraUnavailable) {
			err = fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
		}
		s.finishLocked(StateFailed, err)
		return err
	}

	if s.state != StateRequesting {
		s.logger.Debug("session closed while camera was opening, releasing")
		if cerr := stream.Close(); cerr != nil {
			s.logger.Warn("failed to release camera", "error", cerr)
		}
		return ErrSessionClosed
	}

	s.stream = stream
	s.state = StateStreaming
	s.logger.Debug("camera streaming")
	return nil
}

// Attempt reads one frame and tries to decode it. A zero Result with a nil
// error means no code was found and the caller should schedule the next
// attempt. On a decoded code the session ends and the camera is released
// before Attempt returns.
func (s *Session) Attempt(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return Result{}, ErrSessionClosed
	}
	stream := s.stream
	s.attempts++
	s.mu.Unlock()

	img, err := stream.Frame(ctx)
	if err != nil {
		if errors.Is(err, ErrNoFrame) {
			return Result{}, nil
		}
		return Result{}, s.frameFailed(ctx, err)
	}

	payload, ok := s.decoder.Decode(img)
	if !ok {
		return Result{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming {
		return Result{}, ErrSessionClosed
	}

	// Stop capturing before the payload is inspected.
	s.state = StateSucceeded
	s.releaseLocked()

	p, err := ParseURI(payload)
	if err != nil {
		s.logger.Debug("decoded QR payload rejected", "error", err)
		s.finishLocked(StateFailed, err)
		return Result{}, err
	}

	s.result = Result{Done: true, Secret: p.Secret, Ignored: p.Ignored}
	s.finishLocked(StateSucceeded, nil)
	return s.result, nil
}

func (s *Session) frameFailed(ctx context.Context, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming {
		return ErrSessionClosed
	}
	if ctx.Err() != nil {
		s.finishLocked(StateCancelled, nil)
		return ErrSessionClosed
	}
	if errors.Is(err, ErrStreamEnded) {
		s.finishLocked(StateFailed, ErrNoQRCode)
		return ErrNoQRCode
	}

	err = fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	s.finishLocked(StateFailed, err)
	return err
}

// Cancel ends the session without an error. It is idempotent and a no-op
// once the session is terminal.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return
	}
	s.finishLocked(StateCancelled, nil)
}

// Run drives the session to completion: it opens the camera and attempts a
// decode per frame until a code is found, the session fails, or ctx is done.
// Cancellation yields a zero Result and a nil error. The camera is released
// on every path.
func (s *Session) Run(ctx context.Context) (Result, error) {
	defer s.Cancel()

	if err := s.Open(ctx); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return Result{}, nil
		}
		return Result{}, err
	}

	for {
		if ctx.Err() != nil {
			s.Cancel()
			return Result{}, nil
		}

		res, err := s.Attempt(ctx)
		switch {
		case errors.Is(err, ErrSessionClosed):
			return Result{}, s.Err()
		case err != nil:
			return Result{}, err
		case res.Done:
			return res, nil
		}
	}
}

func (s *Session) finishLocked(state State, err error) {
	s.state = state
	s.err = err
	s.releaseLocked()
	s.logger.Debug("scan session finished", "state", state.String(), "attempts", s.attempts)
}

// releaseLocked stops the stream once; later calls are no-ops.
func (s *Session) releaseLocked() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Warn("failed to release camera", "error", err)
	}
	s.stream = nil
}
