package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaearon/authlive/internal/authenticator"
	"github.com/aaearon/authlive/internal/clipboard"
	"github.com/aaearon/authlive/internal/config"
	"github.com/aaearon/authlive/internal/scan"
	"github.com/aaearon/authlive/internal/totp"
	"github.com/aaearon/authlive/internal/ui"
	"github.com/spf13/cobra"
)

var verbose bool

// newRootCommand creates the root cobra command with the given RunE function.
// All flag registration and PersistentPreRunE setup is centralized here.
func newRootCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authlive",
		Short: "Live TOTP authenticator for the terminal",
		Long: `Show a live time-based one-time password for a secret key.

Running authlive with no subcommand opens the interactive screen. Type or
paste a Base32 secret, or scan an otpauth:// QR code with your webcam, and
the 6-digit code refreshes every 30 seconds with a countdown.

Keys:
  ctrl+s  scan a QR code with the camera
  esc     cancel a scan, or quit
  ctrl+v  paste the secret from the clipboard
  ctrl+y  copy the current code
  ctrl+c  quit

Examples:
  # Interactive screen
  authlive

  # Print the current code once
  authlive code JBSWY3DPEHPK3PXP

  # Read the secret from a QR code image
  authlive scan --image qr.png`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setVerbose(verbose)
			return validateOutputFormat()
		},
		RunE: runFn,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")

	return cmd
}

var rootCmd = newRootCommand(runInteractiveProduction)

// runInteractiveProduction is the production RunE for the root command
func runInteractiveProduction(cmd *cobra.Command, args []string) error {
	cfg, env, _, err := config.LoadDefaultWithPath()
	if err != nil {
		return err
	}

	screenLog, closeLog, err := screenLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			log.Info("Failed to close log file: %v", cerr)
		}
	}()

	return runInteractive(cmd, cfg, env, newV4L2Provider(cfg, screenLog), clipboardFor(cfg), teaRunner{}, screenLog)
}

// NewRootCommandWithDeps creates a root command with injected dependencies for testing
func NewRootCommandWithDeps(
	cfg *config.Config,
	env config.Env,
	cams cameraProvider,
	clip clipboard.Clipboard,
	runner programRunner,
) *cobra.Command {
	return newRootCommand(func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, cfg, env, cams, clip, runner, slog.New(slog.DiscardHandler))
	})
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ue *userError
		if verbose && errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "Detail: %v\n", ue.err)
		}
		if !verbose {
			fmt.Fprintln(os.Stderr, "Hint: re-run with --verbose for more details")
		}
		os.Exit(1)
	}
}

// runInteractive wires the controller, scan sessions and the screen, and
// blocks until the user quits. screenLog must not write to the terminal.
func runInteractive(
	cmd *cobra.Command,
	cfg *config.Config,
	env config.Env,
	cams cameraProvider,
	clip clipboard.Clipboard,
	runner programRunner,
	screenLog *slog.Logger,
) error {
	if !ui.IsInteractive() {
		return fmt.Errorf("%w; use 'authlive code' or 'authlive scan' instead", ui.ErrNotInteractive)
	}

	ctrl := authenticator.New(totp.NewEngine(), clip, authenticator.WithLogger(screenLog))
	if env.Secret != "" {
		log.Info("Using secret from AUTHLIVE_SECRET")
		ctrl.SetSecret(env.Secret)
	}

	decoder := scan.NewQRDecoder(cfg.Scan.TryHarder)
	newSession := func() *scan.Session {
		return scan.NewSession(cams.Camera(""), decoder, scan.WithLogger(screenLog))
	}

	model := ui.NewModel(ctrl, newSession, ui.WithModelLogger(screenLog))
	defer model.Close()

	log.Info("Camera device: %s", cfg.Camera.Device)
	if err := runner.Run(model); err != nil {
		return fmt.Errorf("interactive screen failed: %w", err)
	}
	return nil
}
