package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

// outputFormat holds the global output format flag value.
var outputFormat string

// isJSONOutput returns true when the user has requested JSON output.
func isJSONOutput() bool {
	return outputFormat == "json"
}

// validateOutputFormat rejects anything but text and json.
func validateOutputFormat() error {
	switch outputFormat {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be text or json", outputFormat)
	}
}

// writeJSON encodes data as indented JSON to the given writer.
func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
