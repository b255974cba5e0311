package main

import "github.com/aaearon/authlive/cmd"

func main() {
	cmd.Execute()
}
