package cmd

import (
	"fmt"

	"github.com/aaearon/authlive/internal/config"
	"github.com/spf13/cobra"
)

// configureFlags holds the command-line flags for the configure command
type configureFlags struct {
	device    string
	tryHarder bool
	clipboard bool
	logFile   string
}

// NewConfigureCommand creates the configure command
func NewConfigureCommand() *cobra.Command {
	return NewConfigureCommandWithDeps(&v4l2Provider{}, uiPrompter{})
}

// NewConfigureCommandWithDeps creates a configure command with injected dependencies for testing
func NewConfigureCommandWithDeps(lister deviceLister, selector deviceSelector) *cobra.Command {
	flags := &configureFlags{}
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose the camera and scan settings",
		Long: `Configure authlive by choosing the camera used for QR scanning.

Without --device, the available /dev/video* devices are listed and you pick
one interactively. Settings are written to ~/.authlive/config.yaml (or the
path in AUTHLIVE_CONFIG). Secrets are never written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, flags, lister, selector)
		},
	}

	cmd.Flags().StringVarP(&flags.device, "device", "d", "", "Video device to use (skips the prompt)")
	cmd.Flags().BoolVar(&flags.tryHarder, "try-harder", false, "Spend more time decoding each frame")
	cmd.Flags().BoolVar(&flags.clipboard, "clipboard", true, "Enable clipboard paste and copy")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Write interactive-mode logs to this file")

	return cmd
}

func runConfigure(cmd *cobra.Command, flags *configureFlags, lister deviceLister, selector deviceSelector) error {
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to determine config path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	device := flags.device
	if device == "" {
		devices, err := lister.Devices()
		if err != nil {
			return fmt.Errorf("failed to list cameras: %w", err)
		}
		log.Info("Found %d video devices", len(devices))

		device, err = selector.SelectDevice(devices)
		if err != nil {
			return err
		}
	}
	cfg.Camera.Device = device

	if cmd.Flags().Changed("try-harder") {
		cfg.Scan.TryHarder = flags.tryHarder
	}
	if cmd.Flags().Changed("clipboard") {
		cfg.Clipboard = flags.clipboard
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = flags.logFile
	}

	log.Info("Saving config...")
	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Camera set to %s\n", device)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", cfgPath)
	return nil
}
