package cmd

import (
	"github.com/aaearon/authlive/internal/scan"
	tea "github.com/charmbracelet/bubbletea"
)

// deviceLister interface for discovering video devices
type deviceLister interface {
	Devices() ([]string, error)
}

// cameraProvider resolves capture sources for scan sessions
type cameraProvider interface {
	deviceLister
	// Camera returns the source for device; "" selects the configured device.
	Camera(device string) scan.Camera
}

// secretPrompter interface for interactive secret entry
type secretPrompter interface {
	PromptSecret() (string, error)
}

// deviceSelector interface for interactive camera selection
type deviceSelector interface {
	SelectDevice(devices []string) (string, error)
}

// programRunner runs the interactive screen until it quits
type programRunner interface {
	Run(model tea.Model) error
}
