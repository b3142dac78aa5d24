// Package main provides the shelf CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/backend"
)

var (
	// Flags bound on the root command.
	configDirFlag string
	dataDirFlag   string
	verbose       bool

	// shelf is the global backend router, attached on startup.
	shelf *backend.Router

	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Shelf is a storage engine for hierarchical notes",
	Long: `Shelf stores hierarchical notes, sections, and books along with their
tags, attachments, versions, and settings. Storage is pluggable: records can
live in a SQLite database, a single JSON document, a tree of JSON files, or
on a remote shelf server.`,
	PersistentPreRunE: initShelf,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeShelf()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: $(CWD)/.shelf-db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(settingCmd)
}

// initShelf loads config and attaches the backend router.
func initShelf(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := loadShelfConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shelf = backend.NewRouter(log)
	if err := shelf.Attach(cfg); err != nil {
		return fmt.Errorf("attach backend: %w", err)
	}
	return nil
}

// closeShelf detaches the backend and releases resources.
func closeShelf() error {
	if shelf != nil {
		return shelf.Detach()
	}
	return nil
}
