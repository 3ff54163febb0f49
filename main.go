package main

import (
	"os"

	"github.com/BlackOrder/zollpilot/internal/cli"
)

// main runs the zollpilot command line and exits with its status.
func main() {
	os.Exit(cli.Execute())
}
