package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/pkg/vaultio"
)

// newUpdateCommand builds the "update" subcommand: replaces the document
// addressed by a partition-map-key and password with the JSON read from
// a file, under the WAL-protected pkg/vaultio.Update.
func newUpdateCommand() *cobra.Command {
	var jsonPath string

	updateCmd := &cobra.Command{
		Use:   "update <vault-path> <partition-map-key>",
		Short: "Replace a document's contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			vaultPath, mapKey := args[0], args[1]

			raw, err := os.ReadFile(jsonPath)
			if err != nil {
				return err
			}
			var doc interface{}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}

			password, err := promptPassword("Password")
			if err != nil {
				return err
			}

			params := config.Default()
			if err := vaultio.Update(vaultPath, doc, mapKey, password, params); err != nil {
				return err
			}
			fmt.Println("Vault updated.")
			return nil
		},
	}
	updateCmd.Flags().StringVar(&jsonPath, "file", "", "path to the new document's JSON content")
	_ = updateCmd.MarkFlagRequired("file")
	return updateCmd
}
