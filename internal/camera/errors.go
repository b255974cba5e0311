package camera

import "errors"

var (
	errClosed = errors.New("camera stream closed")

	// ErrUnsupported is returned on platforms without V4L2.
	ErrUnsupported = errors.New("video capture is not supported on this platform")
	// ErrNoDevice is returned when no video device could be found.
	ErrNoDevice = errors.New("no video device found")
	// ErrNoFormat is returned when a device offers no decodable pixel format.
	ErrNoFormat = errors.New("device offers no supported pixel format")
)
