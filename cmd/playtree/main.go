// Command playtree validates, compiles, simulates, and journals playtrees.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/playtree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "playtree:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
