package main

import (
	"os"

	"git.srvlab.io/whiskey/attach-nas/cmd/attach-nas/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
