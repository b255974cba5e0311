package scan

import "errors"

var (
	// ErrCameraUnavailable is returned when the camera cannot be opened, or
	// stops delivering frames mid-session.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrInvalidQRFormat is returned when a decoded payload is not an otpauth URI.
	ErrInvalidQRFormat = errors.New("invalid QR code format")
	// ErrUnparsablePayload accompanies ErrInvalidQRFormat when the payload is
	// not a URI at all.
	ErrUnparsablePayload = errors.New("could not parse QR code data")
	// ErrMissingSecret is returned when an otpauth URI has no secret parameter.
	ErrMissingSecret = errors.New("QR code does not contain a secret")
	// ErrNoQRCode is returned when a finite frame source ends without a code.
	ErrNoQRCode = errors.New("no QR code found")
	// ErrSessionClosed is returned when operating on a session that is no
	// longer active.
	ErrSessionClosed = errors.New("scan session closed")

	// ErrNoFrame is returned by a Stream when no frame arrived in time. The
	// session keeps scanning.
	ErrNoFrame = errors.New("no frame available")
	// ErrStreamEnded is returned by a Stream with a finite number of frames
	// once they are exhausted.
	ErrStreamEnded = errors.New("frame stream ended")
)
