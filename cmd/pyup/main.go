// Package main is the entry point for the pyup CLI.
package main

import (
	"os"

	"github.com/thoreinstein/pyup/cmd/pyup/commands"
)

func main() {
	os.Exit(commands.Execute())
}
