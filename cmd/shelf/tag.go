// Tag commands: manage tag definitions and their assignment to items.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

var tagColor string

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := shelf.PutRecord(types.CollectionTags, "", &types.Tag{
			Name:  args[0],
			Color: tagColor,
		})
		if err != nil {
			return fmt.Errorf("add tag: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := shelf.ListRecords(types.CollectionTags, nil)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		for _, rec := range records {
			tg := rec.(*types.Tag)
			fmt.Printf("%s  %-12s %s\n", tg.ID, tg.Name, tg.Color)
		}
		return nil
	},
}

var tagAssignCmd = &cobra.Command{
	Use:   "assign <item-id> <tag-id>",
	Short: "Assign a tag to an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := fetchItem(args[0]); err != nil {
			return err
		}
		id, err := shelf.PutRecord(types.CollectionItemTags, "", &types.TagAssignment{
			ItemID: args[0],
			TagID:  args[1],
		})
		if err != nil {
			return fmt.Errorf("assign tag: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	tagAddCmd.Flags().StringVar(&tagColor, "color", "", "display color, e.g. #e8b339")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAssignCmd)
}
