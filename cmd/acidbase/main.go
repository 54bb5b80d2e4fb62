package main

import (
	"os"

	"acidbase/cmd/acidbase/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
