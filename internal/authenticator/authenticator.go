// Package authenticator holds the state of a live authenticator: the current
// secret, its token, the countdown, the scan flag and the one error shown to
// the user. All changes go through Controller methods.
package authenticator

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/aaearon/authlive/internal/clipboard"
	"github.com/aaearon/authlive/internal/countdown"
	"github.com/aaearon/authlive/internal/scan"
	"github.com/aaearon/authlive/internal/totp"
)

// State is a snapshot of what the user sees.
type State struct {
	Secret    string
	Token     totp.Token
	Remaining int
	Period    int
	Scanning  bool
	Copied    bool
	// Err is the current error; Message is its user-facing text. A new error
	// replaces the previous one.
	Err     error
	Message string
}

// HasSecret reports whether a secret has been entered.
func (s State) HasSecret() bool {
	return s.Secret != ""
}

// Controller owns the State. It is not safe for concurrent use; callers drive
// it from a single event loop.
type Controller struct {
	engine *totp.Engine
	clock  *countdown.Synchronizer
	clip   clipboard.Clipboard
	logger *slog.Logger
	state  State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSynchronizer replaces the countdown source.
func WithSynchronizer(s *countdown.Synchronizer) Option {
	return func(c *Controller) {
		c.clock = s
	}
}

// New creates a controller with no secret.
func New(engine *totp.Engine, clip clipboard.Clipboard, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		clip:   clip,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = countdown.NewWithClock(engine.Params().Period, engine.Now)
	}
	if c.clip == nil {
		c.clip = clipboard.Disabled{}
	}
	c.state.Period = int(c.clock.Period())
	c.state.Remaining = c.clock.Tick().Remaining
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	return c.state
}

// SetSecret replaces the secret with its normalized form and regenerates the
// token. Typing, pasting and scanning all end up here.
func (c *Controller) SetSecret(raw string) {
	c.state.Secret = totp.Normalize(raw)
	c.Regenerate()
}

// Regenerate recomputes the token for the current secret and time. An empty
// secret clears both token and error. An invalid secret clears the token and
// shows the error.
func (c *Controller) Regenerate() {
	token, err := c.engine.Generate(c.state.Secret)
	c.state.Token = token
	if err != nil {
		c.logger.Debug("token generation failed", "error", err)
		c.setError(err)
		return
	}
	c.clearError()
}

// Tick re-derives the countdown from the wall clock and regenerates the token
// when a new period has begun.
func (c *Controller) Tick() countdown.Tick {
	tick := c.clock.Tick()
	c.state.Remaining = tick.Remaining
	if tick.Boundary {
		c.Regenerate()
	}
	return tick
}

// Paste reads the clipboard into the secret. On failure the secret is left
// unchanged and the error is shown.
func (c *Controller) Paste() error {
	text, err := c.clip.ReadText()
	if err != nil {
		c.logger.Debug("clipboard read failed", "error", err)
		c.setError(err)
		return err
	}
	c.SetSecret(text)
	return nil
}

// Copy writes the current token to the clipboard. It does nothing when there
// is no token.
func (c *Controller) Copy() error {
	if c.state.Token.Absent() {
		return nil
	}
	if err := c.clip.WriteText(string(c.state.Token)); err != nil {
		c.logger.Debug("clipboard write failed", "error", err)
		c.setError(err)
		return err
	}
	c.state.Copied = true
	return nil
}

// ClearCopied ends the "copied" feedback.
func (c *Controller) ClearCopied() {
	c.state.Copied = false
}

// BeginScan marks a scan as active. It reports false if one already is.
func (c *Controller) BeginScan() bool {
	if c.state.Scanning {
		return false
	}
	c.state.Scanning = true
	return true
}

// ScanSucceeded feeds a scanned secret into the secret.
func (c *Controller) ScanSucceeded(res scan.Result) {
	c.state.Scanning = false
	if len(res.Ignored) > 0 {
		c.logger.Warn("ignoring otpauth parameters, using fixed SHA1/6/30", "params", strings.Join(res.Ignored, ","))
	}
	c.SetSecret(res.Secret)
}

// ScanFailed ends the scan and shows err. The secret is unchanged.
func (c *Controller) ScanFailed(err error) {
	c.state.Scanning = false
	if err == nil || errors.Is(err, scan.ErrSessionClosed) {
		return
	}
	c.setError(err)
}

// ScanCancelled ends the scan without an error.
func (c *Controller) ScanCancelled() {
	c.state.Scanning = false
}

func (c *Controller) setError(err error) {
	c.state.Err = err
	c.state.Message = Message(err)
}

func (c *Controller) clearError() {
	c.state.Err = nil
	c.state.Message = ""
}

// Message maps an error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, totp.ErrInvalidSecret):
		return "Invalid secret key. Please check the key and try again."
	case errors.Is(err, scan.ErrCameraUnavailable):
		return "Could not access camera. Please grant permission and try again."
	case errors.Is(err, scan.ErrUnparsablePayload):
		return "Could not parse QR code data."
	case errors.Is(err, scan.ErrInvalidQRFormat):
		return "Invalid QR code format."
	case errors.Is(err, scan.ErrMissingSecret):
		return "QR code does not contain a secret key."
	case errors.Is(err, scan.ErrNoQRCode):
		return "No QR code found."
	case errors.Is(err, clipboard.ErrRead):
		return "Failed to read from clipboard. Please paste manually."
	case errors.Is(err, clipboard.ErrWrite):
		return "Failed to copy token to clipboard."
	default:
		return err.Error()
	}
}
