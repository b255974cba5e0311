package cmd

import (
	"context"
	"errors"
	"image"

	"github.com/aaearon/authlive/internal/camera"
	"github.com/aaearon/authlive/internal/scan"
	tea "github.com/charmbracelet/bubbletea"
)

// mockCameraProvider implements the cameraProvider interface for testing
type mockCameraProvider struct {
	frames     []image.Image
	openErr    error
	devices    []string
	devicesErr error
	gotDevice  string
}

func (m *mockCameraProvider) Camera(device string) scan.Camera {
	m.gotDevice = device
	if m.openErr != nil {
		return &failingCamera{err: m.openErr}
	}
	return camera.FromImages(m.frames...)
}

func (m *mockCameraProvider) Devices() ([]string, error) {
	return m.devices, m.devicesErr
}

type failingCamera struct {
	err error
}

func (f *failingCamera) Open(ctx context.Context) (scan.Stream, error) {
	return nil, f.err
}

// mockPrompter implements secretPrompter and deviceSelector for testing
type mockPrompter struct {
	secret    string
	promptErr error
	device    string
	selectErr error
	prompted  bool
	offered   []string
}

func (m *mockPrompter) PromptSecret() (string, error) {
	m.prompted = true
	return m.secret, m.promptErr
}

func (m *mockPrompter) SelectDevice(devices []string) (string, error) {
	m.offered = devices
	if m.selectErr != nil {
		return "", m.selectErr
	}
	if m.device == "" && len(devices) > 0 {
		return devices[0], nil
	}
	return m.device, nil
}

// mockRunner implements programRunner; it drives the model with msgs and
// records the final view.
type mockRunner struct {
	msgs  []tea.Msg
	view  string
	runs  int
	err   error
	model tea.Model
}

func (m *mockRunner) Run(model tea.Model) error {
	m.runs++
	m.model = model
	for _, msg := range m.msgs {
		model, _ = model.Update(msg)
	}
	m.view = model.View()
	return m.err
}

var errMockCamera = errors.New("device busy")
