package cmd

import (
	"log/slog"

	"github.com/aaearon/authlive/internal/camera"
	"github.com/aaearon/authlive/internal/clipboard"
	"github.com/aaearon/authlive/internal/config"
	"github.com/aaearon/authlive/internal/scan"
	"github.com/aaearon/authlive/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// v4l2Provider serves webcams configured in cfg.
type v4l2Provider struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newV4L2Provider(cfg *config.Config, logger *slog.Logger) *v4l2Provider {
	return &v4l2Provider{cfg: cfg, logger: logger}
}

func (p *v4l2Provider) Camera(device string) scan.Camera {
	if device == "" {
		device = p.cfg.Camera.Device
	}
	return camera.NewV4L2(device, p.cfg.Camera.Width, p.cfg.Camera.Height, config.ParseFrameTimeout(p.cfg), p.logger)
}

func (p *v4l2Provider) Devices() ([]string, error) {
	return camera.Discover()
}

// uiPrompter adapts the survey prompts in internal/ui.
type uiPrompter struct{}

func (uiPrompter) PromptSecret() (string, error) {
	return ui.PromptSecret()
}

func (uiPrompter) SelectDevice(devices []string) (string, error) {
	return ui.SelectDevice(devices)
}

// teaRunner runs a bubbletea program on the alternate screen.
type teaRunner struct{}

func (teaRunner) Run(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// clipboardFor returns the system clipboard unless disabled in cfg.
func clipboardFor(cfg *config.Config) clipboard.Clipboard {
	if !cfg.Clipboard {
		return clipboard.Disabled{}
	}
	return clipboard.NewSystem()
}
