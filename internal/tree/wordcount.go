package tree

import (
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// markupReplacer strips the common markdown punctuation that would
// otherwise glue tokens together or count as words on its own.
var markupReplacer = strings.NewReplacer(
	"#", " ",
	"*", " ",
	"_", " ",
	"`", " ",
	">", " ",
	"~", " ",
	"[", " ",
	"]", " ",
	"(", " ",
	")", " ",
	"!", " ",
	"|", " ",
	"-", " ",
)

// WordCount returns the approximate word count of an item. It prefers the
// precomputed plaintext field; otherwise it strips a minimal markdown
// pattern set from the raw content and counts whitespace-delimited tokens.
// Best-effort, not a linguistic tokenizer.
func WordCount(item *types.Item) int {
	text := item.ContentPlain
	if text == "" {
		text = markupReplacer.Replace(item.Content)
	}
	return len(strings.Fields(text))
}

// SubtreeWordCount returns the summed word count of a container's live
// descendants plus the container's own content, when present in items.
func SubtreeWordCount(items []*types.Item, containerID string) (int, error) {
	descendants, err := Descendants(items, containerID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range items {
		if item.ID == containerID && !item.Deleted() {
			total += WordCount(item)
		}
	}
	for _, item := range descendants {
		total += WordCount(item)
	}
	return total, nil
}

// DisplayDate formats an item's last-touched timestamp for list views:
// UpdatedAt when the item has been edited after creation, CreatedAt
// otherwise.
func DisplayDate(item *types.Item) string {
	ts := item.CreatedAt
	if item.UpdatedAt.After(item.CreatedAt) {
		ts = item.UpdatedAt
	}
	return ts.Format("2006-01-02 15:04")
}
