package backend

const (
	keyPrefixBookmark   = "shelf:bookmark:"
	keyPrefixCollection = "shelf:collection:"
	keyPrefixShare      = "shelf:share:"

	keyBookmarkOrder   = "shelf:bookmarks:order"
	keyBookmarkSeq     = "shelf:bookmarks:seq"
	keyCollectionOrder = "shelf:collections:order"
	keyCollectionSeq   = "shelf:collections:seq"
)

// BookmarkKey returns the Redis key holding a bookmark's JSON.
func BookmarkKey(id string) string {
	return keyPrefixBookmark + id
}

// CollectionKey returns the Redis key holding a collection's JSON.
func CollectionKey(id string) string {
	return keyPrefixCollection + id
}

// ShareKey returns the Redis key of the set of ids shared under shareID.
func ShareKey(shareID string) string {
	return keyPrefixShare + shareID
}

func bookmarkKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}
	return keys
}
