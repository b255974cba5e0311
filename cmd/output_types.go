package cmd

// tokenOutput is the JSON representation of a generated token.
type tokenOutput struct {
	Token     string `json:"token"`
	Remaining int    `json:"remaining"`
	Period    int    `json:"period"`
}

// scanOutput is the JSON representation of a scanned secret.
type scanOutput struct {
	Secret  string   `json:"secret"`
	Ignored []string `json:"ignored,omitempty"`
}

// versionOutput is the JSON representation of the version command.
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
}
