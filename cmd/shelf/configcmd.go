package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(shelf.Config())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
