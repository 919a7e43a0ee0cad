// Command doinorm rewrites the doi property of every node in a graph store
// to its bare "10.<registrant>/<suffix>" form.
package main

import (
	"fmt"
	"os"

	"github.com/rdswitchboard/doinorm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
