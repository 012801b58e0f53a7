// Package diff computes which freshly fetched items are genuinely new
// relative to a feed's persisted archive. Items are compared by their
// canonical link, never by their generated identifiers.
package diff

import "feed-collector/internal/domain/entity"

// DetectNew returns the subsequence of fetched whose links do not appear in
// existing. Output order preserves the order of fetched. The function is pure:
// neither input slice is mutated.
func DetectNew(existing, fetched []entity.Item) []entity.Item {
	known := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		known[it.Link] = struct{}{}
	}

	fresh := make([]entity.Item, 0, len(fetched))
	for _, it := range fetched {
		if _, ok := known[it.Link]; ok {
			continue
		}
		// Guard against the same link appearing twice in one fetch
		known[it.Link] = struct{}{}
		fresh = append(fresh, it)
	}
	return fresh
}
