// Package cmd assembles vaultctl's cobra command tree: a package-level
// rootCmd plus one file per subcommand, each built by a New*Command
// constructor.
package cmd

import (
	"github.com/spf13/cobra"
)

const appName = "vaultctl"

// rootCmd is the entry point for all vaultctl subcommands. It performs
// no action itself.
var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: appName + " - multi-plaintext secret-sharing vault",
	Long: appName + `

A vault file holds two independent documents, each recoverable only by
supplying its own partition-map-key and password. Without both secrets
for a given document, the vault is indistinguishable from random data.`,
}

func init() {
	rootCmd.AddCommand(newCreateCommand())
	rootCmd.AddCommand(newReadCommand())
	rootCmd.AddCommand(newUpdateCommand())
}

// Execute runs the configured command tree.
func Execute() error {
	return rootCmd.Execute()
}
