package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Iilun/survey/v2"
	"github.com/aaearon/authlive/internal/camera"
	"github.com/aaearon/authlive/internal/totp"
)

// deviceName is a variable so tests can stub sysfs lookups.
var deviceName = camera.DeviceName

// FormatDeviceOption formats a video device into a display string.
func FormatDeviceOption(device string) string {
	if name := deviceName(device); name != "" {
		return fmt.Sprintf("%s (%s)", name, device)
	}
	return fmt.Sprintf("%s (%s)", filepath.Base(device), device)
}

// BuildOptions builds a sorted list of display options from devices.
func BuildOptions(devices []string) []string {
	if len(devices) == 0 {
		return []string{}
	}

	options := make([]string, len(devices))
	for i, device := range devices {
		options[i] = FormatDeviceOption(device)
	}

	sort.Strings(options)
	return options
}

// FindDeviceByDisplay finds a device by its formatted display string.
func FindDeviceByDisplay(devices []string, display string) (string, error) {
	for _, device := range devices {
		if FormatDeviceOption(device) == display {
			return device, nil
		}
	}
	return "", fmt.Errorf("device not found: %s", display)
}

// SelectDevice presents an interactive selector for choosing a camera. A
// single device is returned without prompting.
func SelectDevice(devices []string) (string, error) {
	if len(devices) == 0 {
		return "", camera.ErrNoDevice
	}
	if len(devices) == 1 {
		return devices[0], nil
	}
	if !IsInteractive() {
		return "", ErrNotInteractive
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select a camera:",
		Options: BuildOptions(devices),
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", fmt.Errorf("camera selection failed: %w", err)
	}

	return FindDeviceByDisplay(devices, selected)
}

// ValidateSecret is a survey validator accepting Base32 secrets.
func ValidateSecret(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return errors.New("secret must be text")
	}
	secret := totp.Normalize(s)
	if secret == "" {
		return errors.New("secret is required")
	}
	if _, err := totp.Decode(secret); err != nil {
		return errors.New("secret is not valid Base32")
	}
	return nil
}

// PromptSecret asks for a secret without echoing it.
func PromptSecret() (string, error) {
	if !IsInteractive() {
		return "", ErrNotInteractive
	}

	var secret string
	if err := survey.AskOne(&survey.Password{
		Message: "Secret key:",
		Help:    "Base32 secret from your provider, e.g. JBSWY3DPEHPK3PXP",
	}, &secret, survey.WithValidator(ValidateSecret)); err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return totp.Normalize(secret), nil
}
