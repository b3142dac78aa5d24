// Setting commands: read and write application settings.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/settings"
)

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Manage application settings",
}

var settingGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := shelf.GetSetting(args[0], nil)
		if err != nil {
			return fmt.Errorf("get setting: %w", err)
		}
		if value == nil {
			return fmt.Errorf("setting %q not set", args[0])
		}
		return printJSON(value)
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting value",
	Long: `Set stores a setting. The value is parsed as JSON when possible, so
numbers and booleans keep their type; anything else is stored as a string.

Example:
  shelf setting set theme dark
  shelf setting set editor.font_size 14`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingSet,
}

func init() {
	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)
}

func runSettingSet(cmd *cobra.Command, args []string) error {
	var value any
	if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
		value = args[1]
	}

	// Route through the settings cache so the durable write follows the
	// same path the embedding application uses; Close flushes it.
	cache := settings.New(shelf, log)
	cache.Set(args[0], value)
	cache.Close()

	select {
	case err := <-cache.Errors():
		return fmt.Errorf("set setting: %w", err)
	default:
	}
	return nil
}
