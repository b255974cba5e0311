package cmd

func init() {
	rootCmd.AddCommand(
		NewCodeCommand(),
		NewScanCommand(),
		NewConfigureCommand(),
		NewVersionCommand(),
	)
}
