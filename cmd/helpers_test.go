package cmd

import (
	"bytes"

	"github.com/spf13/cobra"
)

// newTestRootCommand creates a bare root command carrying the persistent
// flags of the real one.
func newTestRootCommand() *cobra.Command {
	return newRootCommand(func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	})
}

// executeCommand executes a command and returns its output
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// executeCommandSplit executes a command and returns stdout and stderr
// separately.
func executeCommandSplit(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
