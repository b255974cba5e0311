package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/aaearon/authlive/internal/camera"
	"github.com/aaearon/authlive/internal/config"
	"github.com/aaearon/authlive/internal/countdown"
	"github.com/aaearon/authlive/internal/scan"
	"github.com/aaearon/authlive/internal/totp"
	"github.com/spf13/cobra"
)

// scanFlags holds the command-line flags for the scan command
type scanFlags struct {
	device string
	image  string
	code   bool
}

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	return newScanCommand(func(cmd *cobra.Command, flags *scanFlags) error {
		cfg, _, _, err := config.LoadDefaultWithPath()
		if err != nil {
			return err
		}
		return runScan(cmd, flags, newV4L2Provider(cfg, logger), scan.NewQRDecoder(cfg.Scan.TryHarder), totp.NewEngine())
	})
}

// NewScanCommandWithDeps creates a scan command with injected dependencies for testing
func NewScanCommandWithDeps(cams cameraProvider, dec scan.Decoder, engine *totp.Engine) *cobra.Command {
	return newScanCommand(func(cmd *cobra.Command, flags *scanFlags) error {
		return runScan(cmd, flags, cams, dec, engine)
	})
}

func newScanCommand(runFn func(*cobra.Command, *scanFlags) error) *cobra.Command {
	flags := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read a secret from an otpauth QR code",
		Long: `Scan an otpauth://totp QR code and print the secret it carries.

Frames are read from the configured camera (or --device) until a QR code is
decoded; press Ctrl-C to stop. With --image, a still image is scanned
instead. Only SHA1, 6 digits and a 30 second period are supported; other
values in the code are reported and ignored.

Examples:
  authlive scan
  authlive scan --device /dev/video2 --code
  authlive scan --image qr.png --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFn(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.device, "device", "d", "", "Video device to capture from (default from config)")
	cmd.Flags().StringVarP(&flags.image, "image", "i", "", "Scan an image file instead of the camera")
	cmd.Flags().BoolVar(&flags.code, "code", false, "Print the current code instead of the secret")
	cmd.MarkFlagsMutuallyExclusive("device", "image")

	return cmd
}

func runScan(cmd *cobra.Command, flags *scanFlags, cams cameraProvider, dec scan.Decoder, engine *totp.Engine) error {
	var source scan.Camera
	if flags.image != "" {
		log.Info("Scanning image %s", flags.image)
		source = camera.NewStill(flags.image)
	} else {
		source = cams.Camera(flags.device)
		if !isJSONOutput() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Hold the QR code up to the camera. Press Ctrl-C to cancel.")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	session := scan.NewSession(source, dec, scan.WithLogger(logger))
	res, err := session.Run(ctx)
	log.Info("Scan finished after %d frames: %s", session.Attempts(), session.State())
	if err != nil {
		return asUserError(err)
	}
	if !res.Done {
		return nil
	}

	if len(res.Ignored) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ignoring %s; codes use SHA1, 6 digits and a 30s period\n", strings.Join(res.Ignored, ", "))
	}

	secret := totp.Normalize(res.Secret)
	out := cmd.OutOrStdout()
	if flags.code {
		token, err := engine.Generate(secret)
		if err != nil {
			return asUserError(err)
		}
		period := engine.Params().Period
		return printToken(out, token, countdown.NewWithClock(period, engine.Now).Tick().Remaining, period)
	}

	if isJSONOutput() {
		return writeJSON(out, scanOutput{Secret: secret, Ignored: res.Ignored})
	}
	_, err = fmt.Fprintln(out, secret)
	return err
}
