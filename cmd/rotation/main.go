package main

import (
	"os"

	"github.com/rotationlab/backend/cmd/rotation/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
