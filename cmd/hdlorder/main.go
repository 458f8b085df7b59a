// Command hdlorder assigns trigger domains to ordered logic graphs.
package main

import (
	"os"

	"github.com/roach88/hdlorder/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
