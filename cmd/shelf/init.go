package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the shelf storage",
	Long:  `Init attaches the configured storage backend, creating its schema and seeding the built-in tags on first run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The backend is attached by PersistentPreRunE; reaching this
		// point means the schema exists.
		fmt.Printf("shelf initialized (backend: %s)\n", shelf.Config().Backend)
		return nil
	},
}
