package camera

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDevice is the first V4L2 capture node.
const DefaultDevice = "/dev/video0"

// V4L2 is a Video4Linux capture device.
type V4L2 struct {
	device       string
	width        int
	height       int
	frameTimeout time.Duration
	logger       *slog.Logger
}

// NewV4L2 describes a device to capture from at the requested resolution.
// The driver may negotiate a different size. frameTimeout bounds how long a
// single frame wait blocks.
func NewV4L2(device string, width, height int, frameTimeout time.Duration, logger *slog.Logger) *V4L2 {
	if device == "" {
		device = DefaultDevice
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &V4L2{
		device:       device,
		width:        width,
		height:       height,
		frameTimeout: frameTimeout,
		logger:       logger,
	}
}

// Device returns the device path.
func (c *V4L2) Device() string {
	return c.device
}

// timeoutSeconds is the frame timeout rounded up to whole seconds, the unit
// WaitForFrame takes.
func (c *V4L2) timeoutSeconds() uint32 {
	secs := uint32((c.frameTimeout + time.Second - 1) / time.Second)
	if secs == 0 {
		secs = 1
	}
	return secs
}

// devGlob is a variable so tests can point discovery at a temp dir.
var devGlob = "/dev/video*"

// Discover lists candidate video devices, sorted.
func Discover() ([]string, error) {
	matches, err := filepath.Glob(devGlob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoDevice
	}
	sort.Strings(matches)
	return matches, nil
}

// sysfsRoot is a variable so tests can point name lookup at a temp dir.
var sysfsRoot = "/sys/class/video4linux"

// DeviceName returns the driver-reported name of a V4L2 node, or "" if it is
// not known.
func DeviceName(device string) string {
	data, err := os.ReadFile(filepath.Join(sysfsRoot, filepath.Base(device), "name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
