// Item commands: create, inspect, list, move, and delete notes, sections,
// and books.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/tree"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

var (
	itemTitle      string
	itemType       string
	itemParent     string
	itemContent    string
	itemListParent string
	itemListType   string
	itemListAll    bool
	itemHardDelete bool
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage notes, sections, and books",
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new item",
	Long: `Add creates a new item with the given title.

Example:
  shelf item add --title "Shopping list"
  shelf item add --title "Chapter 1" --type section --parent <book-id>`,
	RunE: runItemAdd,
}

var itemGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an item by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := fetchItem(args[0])
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	Long: `List prints items sorted by their sibling order.

Example:
  shelf item list
  shelf item list --parent <section-id>
  shelf item list --type book --deleted`,
	RunE: runItemList,
}

var itemMoveCmd = &cobra.Command{
	Use:   "move <id> <parent-id>",
	Short: "Move an item under a new parent",
	Long: `Move reparents an item. Pass "-" as the parent to move the item to
the top level. The move is rejected when it would orphan the item or create
a cycle.`,
	Args: cobra.ExactArgs(2),
	RunE: runItemMove,
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Long: `Delete soft-deletes an item so it disappears from listings but stays
recoverable. With --hard the item and its tag assignments, attachments, and
versions are removed permanently.`,
	Args: cobra.ExactArgs(1),
	RunE: runItemDelete,
}

func init() {
	itemAddCmd.Flags().StringVar(&itemTitle, "title", "", "item title (required)")
	itemAddCmd.Flags().StringVar(&itemType, "type", types.ItemTypeNote, "item type: note, section, or book")
	itemAddCmd.Flags().StringVar(&itemParent, "parent", "", "parent item ID")
	itemAddCmd.Flags().StringVar(&itemContent, "content", "", "item content")
	_ = itemAddCmd.MarkFlagRequired("title")

	itemListCmd.Flags().StringVar(&itemListParent, "parent", "", "only direct children of this item")
	itemListCmd.Flags().StringVar(&itemListType, "type", "", "only items of this type")
	itemListCmd.Flags().BoolVar(&itemListAll, "deleted", false, "include soft-deleted items")

	itemDeleteCmd.Flags().BoolVar(&itemHardDelete, "hard", false, "permanently delete the item and its dependents")

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemGetCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemMoveCmd)
	itemCmd.AddCommand(itemDeleteCmd)
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	item := &types.Item{
		Type:    itemType,
		Title:   itemTitle,
		Content: itemContent,
	}
	if itemParent != "" {
		item.ParentID = &itemParent
		items, err := loadItems()
		if err != nil {
			return err
		}
		if err := tree.ValidateParent(items, item); err != nil {
			return fmt.Errorf("validate parent: %w", err)
		}
	}

	id, err := shelf.PutRecord(types.CollectionItems, "", item)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	fmt.Println(id)
	return nil
}

func runItemList(cmd *cobra.Command, args []string) error {
	filter := map[string]any{}
	if cmd.Flags().Changed("parent") {
		filter["parent_id"] = itemListParent
	}
	if itemListType != "" {
		filter["type"] = itemListType
	}
	if itemListAll {
		filter["include_deleted"] = true
	}

	records, err := shelf.ListRecords(types.CollectionItems, filter)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	items := make([]*types.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.(*types.Item))
	}
	tree.SortSiblings(items)

	for _, it := range items {
		marker := ""
		if it.Deleted() {
			marker = " (deleted)"
		}
		fmt.Printf("%s  %-8s %s%s\n", it.ID, it.Type, it.Title, marker)
	}
	return nil
}

func runItemMove(cmd *cobra.Command, args []string) error {
	item, err := fetchItem(args[0])
	if err != nil {
		return err
	}

	if args[1] == "-" {
		item.ParentID = nil
	} else {
		parentID := args[1]
		item.ParentID = &parentID
		items, err := loadItems()
		if err != nil {
			return err
		}
		if err := tree.ValidateParent(items, item); err != nil {
			return fmt.Errorf("validate parent: %w", err)
		}
	}

	if _, err := shelf.PutRecord(types.CollectionItems, item.ID, item); err != nil {
		return fmt.Errorf("move item: %w", err)
	}
	return nil
}

func runItemDelete(cmd *cobra.Command, args []string) error {
	if err := shelf.DeleteRecord(types.CollectionItems, args[0], itemHardDelete); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
