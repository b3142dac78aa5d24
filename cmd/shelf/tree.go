// Tree command: render the item hierarchy.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/tree"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

var treeWords bool

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Print the item hierarchy",
	Long: `Tree prints the item hierarchy, starting from the given item or from
the top level. Soft-deleted items are skipped.

Example:
  shelf tree
  shelf tree <book-id> --words`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().BoolVar(&treeWords, "words", false, "show word counts")
}

func runTree(cmd *cobra.Command, args []string) error {
	items, err := loadItems()
	if err != nil {
		return err
	}

	rootID := ""
	depth := 0
	if len(args) == 1 {
		root, err := fetchItem(args[0])
		if err != nil {
			return err
		}
		rootID = root.ID
		printTreeLine(items, root, 0)
		depth = 1
	}

	// A cyclic parent chain would make the recursive render loop forever.
	if _, err := tree.Descendants(items, rootID); err != nil {
		return fmt.Errorf("walk tree: %w", err)
	}
	printSubtree(items, rootID, depth)
	return nil
}

func printSubtree(items []*types.Item, containerID string, depth int) {
	for _, child := range tree.DirectChildren(items, containerID) {
		printTreeLine(items, child, depth)
		printSubtree(items, child.ID, depth+1)
	}
}

func printTreeLine(items []*types.Item, item *types.Item, depth int) {
	line := fmt.Sprintf("%s%s [%s]", strings.Repeat("  ", depth), item.Title, item.Type)
	if treeWords {
		if count, err := tree.SubtreeWordCount(items, item.ID); err == nil {
			line = fmt.Sprintf("%s (%d words)", line, count)
		}
	}
	fmt.Println(line)
}
