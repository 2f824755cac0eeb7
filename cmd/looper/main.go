// Command looper serves, plays and syncs the daily logic puzzle.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/looper/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors through the output formatter;
		// only flag and usage errors reach here unprinted.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
