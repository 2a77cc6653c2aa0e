package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/pkg/vaultio"
)

// newReadCommand builds the "read" subcommand. A wrong partition-map-key
// or password never produces an error here -- the vault is designed so
// that case is indistinguishable from reading genuine garbage, so this
// command prints the same "no document found" message either way.
func newReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read <vault-path> <partition-map-key>",
		Short: "Read the document addressed by a partition-map-key and password",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			vaultPath, mapKey := args[0], args[1]

			password, err := promptPassword("Password")
			if err != nil {
				return err
			}

			params := config.Default()
			result, err := vaultio.Read(vaultPath, mapKey, password, params)
			if err != nil {
				return err
			}

			if !result.Decoded {
				fmt.Println("No document found for that key and password.")
				return nil
			}

			pretty, err := json.MarshalIndent(result.Value, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		},
	}
	return readCmd
}
