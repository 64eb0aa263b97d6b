// Command sweep plays Minesweeper and drives a counter from the terminal,
// journaling every action to SQLite for tracing and replay.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sweep/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
