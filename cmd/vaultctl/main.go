// Command vaultctl is the thin external CLI shell around pkg/vaultio.
// The core vault engine is a library; this command owns argument
// parsing, password prompting and human-facing output only.
package main

import (
	"fmt"
	"os"

	"github.com/shardvault/shardvault/cmd/vaultctl/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
