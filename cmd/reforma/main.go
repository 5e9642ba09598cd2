package main

import (
	"os"

	"github.com/reforma-dev/reforma/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
