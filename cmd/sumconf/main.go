package main

import (
	"fmt"
	"os"

	"github.com/yndnr/sumconf-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(command.ExitCode(err))
	}
}
