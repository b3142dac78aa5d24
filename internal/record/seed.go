package record

import (
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// builtInTag describes a tag seeded on first startup.
type builtInTag struct {
	name  string
	color string
}

// builtInTags are created when a backend's tag collection is empty. Seeding
// only into an empty collection keeps user-deleted defaults from
// resurrecting on restart.
var builtInTags = []builtInTag{
	{"favorite", "#e8b339"},
	{"important", "#d64545"},
	{"draft", "#7a7a7a"},
	{"archived", "#4a6fa5"},
}

// DefaultTags returns fresh built-in tag records with generated IDs.
func DefaultTags(now time.Time) []*types.Tag {
	tags := make([]*types.Tag, len(builtInTags))
	for i, bt := range builtInTags {
		tags[i] = &types.Tag{
			ID:        NewID(),
			Name:      bt.name,
			Color:     bt.color,
			CreatedAt: now,
		}
	}
	return tags
}

// DefaultTagCount returns how many built-in tags exist.
func DefaultTagCount() int {
	return len(builtInTags)
}
