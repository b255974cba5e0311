package cmd

import (
	"fmt"
	"runtime"

	"github.com/aaearon/authlive/internal/totp"
	"github.com/spf13/cobra"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit hash, build date and TOTP parameters of authlive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd)
		},
	}
}

func printVersion(cmd *cobra.Command) error {
	v := version
	if v == "" {
		v = "dev"
	}

	c := commit
	if c == "" {
		c = "unknown"
	}

	d := buildDate
	if d == "" {
		d = "unknown"
	}

	log.Info("Go version: %s", runtime.Version())
	log.Info("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH)

	p := totp.DefaultParams
	if isJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), versionOutput{
			Version:   v,
			Commit:    c,
			Built:     d,
			Algorithm: p.Algorithm.String(),
			Digits:    p.Digits.Length(),
			Period:    int(p.Period),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "authlive version %s\ncommit: %s\nbuilt: %s\n", v, c, d)
	fmt.Fprintf(cmd.OutOrStdout(), "totp: %s, %d digits, %ds period\n", p.Algorithm, p.Digits.Length(), p.Period)
	return nil
}
