// tetrareport queries a Secure Workload appliance and renders the results
// into text reports.
package main

import (
	"fmt"
	"os"

	"github.com/tetraflow/go-tetration/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
