package filestore

import "feed-collector/internal/domain/entity"

// Schema versions for the persisted documents. Readers tolerate an unset or
// older version by treating absent fields as defaults, which keeps the files
// forward-compatible and safe to hand-edit between runs.
const (
	registrySchemaVersion = 1
	archiveSchemaVersion  = 1
)

// registryDocument is the persisted form of the feed registry.
type registryDocument struct {
	Version int           `json:"version"`
	Feeds   []entity.Feed `json:"feeds"`
}

func newRegistryDocument() *registryDocument {
	return &registryDocument{Version: registrySchemaVersion}
}

func (d *registryDocument) normalize() {
	if d.Version == 0 {
		d.Version = registrySchemaVersion
	}
	if d.Feeds == nil {
		d.Feeds = []entity.Feed{}
	}
}

// findFeed returns the index of the feed with the given id, or -1.
func (d *registryDocument) findFeed(id string) int {
	for i := range d.Feeds {
		if d.Feeds[i].ID == id {
			return i
		}
	}
	return -1
}

// archiveDocument is the persisted form of one feed's item archive.
type archiveDocument struct {
	Version int           `json:"version"`
	FeedID  string        `json:"feed_id"`
	Items   []entity.Item `json:"items"`
}

func newArchiveDocument(feedID string) *archiveDocument {
	return &archiveDocument{Version: archiveSchemaVersion, FeedID: feedID}
}

func (d *archiveDocument) normalize(feedID string) {
	if d.Version == 0 {
		d.Version = archiveSchemaVersion
	}
	if d.FeedID == "" {
		d.FeedID = feedID
	}
	if d.Items == nil {
		d.Items = []entity.Item{}
	}
}
