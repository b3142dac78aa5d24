package types

// Standard collection names for Shelf record operations.
const (
	CollectionItems       = "items"
	CollectionTags        = "tags"
	CollectionItemTags    = "item_tags"
	CollectionAttachments = "attachments"
	CollectionVersions    = "versions"
)

// StandardCollections lists all record collections for enumeration.
var StandardCollections = []string{
	CollectionItems,
	CollectionTags,
	CollectionItemTags,
	CollectionAttachments,
	CollectionVersions,
}

// KnownCollection reports whether name is a standard collection.
func KnownCollection(name string) bool {
	for _, c := range StandardCollections {
		if c == name {
			return true
		}
	}
	return false
}
