// Backend inspection and switching commands.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/backend"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

var (
	switchDataDir   string
	switchRemoteURL string
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Inspect and switch storage backends",
}

var backendListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the installed backends",
	Run: func(cmd *cobra.Command, args []string) {
		current := shelf.Config().Backend
		for _, name := range backend.Installed() {
			marker := " "
			if name == current {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
	},
}

var backendSwitchCmd = &cobra.Command{
	Use:   "switch <backend>",
	Short: "Switch to a different storage backend",
	Long: `Switch attaches the named backend and routes subsequent operations to
it. The previous backend is released only after the new one is serving, so a
failed switch leaves the current backend in place.

Example:
  shelf backend switch document
  shelf backend switch remote --remote-url ws://localhost:8040/rpc`,
	Args: cobra.ExactArgs(1),
	RunE: runBackendSwitch,
}

func init() {
	backendSwitchCmd.Flags().StringVar(&switchDataDir, "data-dir", "", "data directory for the new backend")
	backendSwitchCmd.Flags().StringVar(&switchRemoteURL, "remote-url", "", "server URL when switching to the remote backend")

	backendCmd.AddCommand(backendListCmd)
	backendCmd.AddCommand(backendSwitchCmd)
}

func runBackendSwitch(cmd *cobra.Command, args []string) error {
	target := types.Config{
		Backend:       args[0],
		DataDir:       shelf.Config().DataDir,
		RemoteURL:     switchRemoteURL,
		RemoteTimeout: 10 * time.Second,
	}
	if switchDataDir != "" {
		target.DataDir = switchDataDir
	}

	if err := shelf.Switch(target); err != nil {
		return fmt.Errorf("switch backend: %w", err)
	}
	fmt.Printf("now serving from backend %q\n", target.Backend)
	return nil
}
