package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/aaearon/authlive/internal/clipboard"
	"github.com/aaearon/authlive/internal/config"
	"github.com/aaearon/authlive/internal/countdown"
	"github.com/aaearon/authlive/internal/totp"
	"github.com/spf13/cobra"
)

var errNoSecret = errors.New("no secret provided: pass it as an argument, use --paste, or set AUTHLIVE_SECRET")

// codeFlags holds the command-line flags for the code command
type codeFlags struct {
	paste bool
	copy  bool
	watch bool
}

// NewCodeCommand creates the code command
func NewCodeCommand() *cobra.Command {
	return newCodeCommand(func(cmd *cobra.Command, args []string, flags *codeFlags) error {
		cfg, env, _, err := config.LoadDefaultWithPath()
		if err != nil {
			return err
		}
		return runCode(cmd, args, flags, totp.NewEngine(), clipboardFor(cfg), uiPrompter{}, env)
	})
}

// NewCodeCommandWithDeps creates a code command with injected dependencies for testing
func NewCodeCommandWithDeps(engine *totp.Engine, clip clipboard.Clipboard, prompter secretPrompter, env config.Env) *cobra.Command {
	return newCodeCommand(func(cmd *cobra.Command, args []string, flags *codeFlags) error {
		return runCode(cmd, args, flags, engine, clip, prompter, env)
	})
}

func newCodeCommand(runFn func(*cobra.Command, []string, *codeFlags) error) *cobra.Command {
	flags := &codeFlags{}
	cmd := &cobra.Command{
		Use:   "code [SECRET]",
		Short: "Print the current one-time password",
		Long: `Print the current 6-digit code for a Base32 secret and the seconds left
before it changes.

The secret is taken from, in order: the argument, the clipboard (--paste),
the AUTHLIVE_SECRET environment variable, or an interactive prompt.

Examples:
  authlive code JBSWY3DPEHPK3PXP
  authlive code --paste --copy
  authlive code --watch
  authlive code JBSWY3DPEHPK3PXP --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFn(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.paste, "paste", false, "Read the secret from the clipboard")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the code to the clipboard")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Print a new code every period until interrupted")

	return cmd
}

func runCode(
	cmd *cobra.Command,
	args []string,
	flags *codeFlags,
	engine *totp.Engine,
	clip clipboard.Clipboard,
	prompter secretPrompter,
	env config.Env,
) error {
	secret, err := resolveSecret(args, flags.paste, env, clip, prompter)
	if err != nil {
		return err
	}

	token, err := engine.Generate(secret)
	if err != nil {
		return asUserError(err)
	}

	period := engine.Params().Period
	clock := countdown.NewWithClock(period, engine.Now)
	out := cmd.OutOrStdout()

	if err := printToken(out, token, clock.Tick().Remaining, period); err != nil {
		return err
	}

	if flags.copy {
		if err := clip.WriteText(string(token)); err != nil {
			return asUserError(err)
		}
		log.Info("Copied code to clipboard")
		if !isJSONOutput() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		}
	}

	if !flags.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Info("Watching for new codes every %ds", period)
	err = clock.Run(ctx, func(tick countdown.Tick) {
		watchTick(out, engine, secret, tick)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveSecret picks the secret source and returns the normalized secret.
// The secret itself is never logged.
func resolveSecret(args []string, paste bool, env config.Env, clip clipboard.Clipboard, prompter secretPrompter) (string, error) {
	var raw string
	switch {
	case len(args) == 1:
		log.Info("Using secret from argument")
		raw = args[0]
	case paste:
		log.Info("Reading secret from clipboard")
		text, err := clip.ReadText()
		if err != nil {
			return "", asUserError(err)
		}
		raw = text
	case env.Secret != "":
		log.Info("Using secret from AUTHLIVE_SECRET")
		raw = env.Secret
	default:
		text, err := prompter.PromptSecret()
		if err != nil {
			return "", err
		}
		raw = text
	}

	secret := totp.Normalize(raw)
	if secret == "" {
		return "", errNoSecret
	}
	return secret, nil
}

// watchTick prints a fresh code when tick starts a new period.
func watchTick(w io.Writer, engine *totp.Engine, secret string, tick countdown.Tick) {
	if !tick.Boundary {
		return
	}
	next, err := engine.GenerateAt(secret, tick.At)
	if err != nil {
		log.Info("Failed to generate code: %v", err)
		return
	}
	if err := printToken(w, next, tick.Remaining, engine.Params().Period); err != nil {
		log.Info("Failed to print code: %v", err)
	}
}

func printToken(w io.Writer, token totp.Token, remaining int, period uint) error {
	if isJSONOutput() {
		return writeJSON(w, tokenOutput{
			Token:     string(token),
			Remaining: remaining,
			Period:    int(period),
		})
	}
	_, err := fmt.Fprintf(w, "%s (%ds remaining)\n", token, remaining)
	return err
}
