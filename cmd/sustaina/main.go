// Command sustaina evaluates vessel profiles and writes certificates from the
// command line.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
