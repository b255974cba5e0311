package ui

import (
	"errors"
	"testing"

	"github.com/aaearon/authlive/internal/camera"
)

func stubDeviceNames(t *testing.T, names map[string]string) {
	t.Helper()
	original := deviceName
	deviceName = func(device string) string { return names[device] }
	t.Cleanup(func() { deviceName = original })
}

func TestFormatDeviceOption(t *testing.T) {
	stubDeviceNames(t, map[string]string{"/dev/video0": "Integrated Camera"})

	tests := []struct {
		name   string
		device string
		want   string
	}{
		{"named device", "/dev/video0", "Integrated Camera (/dev/video0)"},
		{"unnamed device", "/dev/video2", "video2 (/dev/video2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDeviceOption(tt.device); got != tt.want {
				t.Errorf("FormatDeviceOption(%q) = %q, want %q", tt.device, got, tt.want)
			}
		})
	}
}

func TestBuildOptions(t *testing.T) {
	stubDeviceNames(t, map[string]string{
		"/dev/video0": "USB Camera",
		"/dev/video2": "Integrated Camera",
	})

	got := BuildOptions([]string{"/dev/video0", "/dev/video2"})
	want := []string{"Integrated Camera (/dev/video2)", "USB Camera (/dev/video0)"}
	if len(got) != len(want) {
		t.Fatalf("BuildOptions() returned %d options, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if empty := BuildOptions(nil); len(empty) != 0 {
		t.Errorf("BuildOptions(nil) = %v, want empty", empty)
	}
}

func TestFindDeviceByDisplay(t *testing.T) {
	stubDeviceNames(t, map[string]string{"/dev/video0": "USB Camera"})
	devices := []string{"/dev/video0", "/dev/video1"}

	got, err := FindDeviceByDisplay(devices, "video1 (/dev/video1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/dev/video1" {
		t.Errorf("FindDeviceByDisplay() = %q, want /dev/video1", got)
	}

	if _, err := FindDeviceByDisplay(devices, "nope"); err == nil {
		t.Error("expected error for unknown display string")
	}
}

func TestSelectDevice_NoPromptNeeded(t *testing.T) {
	original := IsTerminalFunc
	defer func() { IsTerminalFunc = original }()
	IsTerminalFunc = func(fd uintptr) bool { return false }

	if _, err := SelectDevice(nil); !errors.Is(err, camera.ErrNoDevice) {
		t.Errorf("SelectDevice(nil) error = %v, want ErrNoDevice", err)
	}

	got, err := SelectDevice([]string{"/dev/video4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/dev/video4" {
		t.Errorf("SelectDevice() = %q, want /dev/video4", got)
	}

	if _, err := SelectDevice([]string{"/dev/video0", "/dev/video1"}); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("SelectDevice() without terminal error = %v, want ErrNotInteractive", err)
	}
}

func TestPromptSecret_NotInteractive(t *testing.T) {
	original := IsTerminalFunc
	defer func() { IsTerminalFunc = original }()
	IsTerminalFunc = func(fd uintptr) bool { return false }

	if _, err := PromptSecret(); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("PromptSecret() error = %v, want ErrNotInteractive", err)
	}
}

func TestValidateSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{"valid", "JBSWY3DPEHPK3PXP", false},
		{"lowercase with spaces", "jbsw y3dp ehpk 3pxp", false},
		{"empty", "   ", true},
		{"not base32", "JBSWY3DPEHPK3PX1", true},
		{"not a string", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSecret(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSecret(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
