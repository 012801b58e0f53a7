// Package scraper converts raw syndication documents into normalized items.
// It uses the gofeed library, which recognizes both RSS and Atom dialects and
// maps them onto one common shape.
package scraper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"feed-collector/internal/domain/entity"
)

// ErrParseFailed indicates that a document could not be recognized as a feed.
// A recognizable feed that happens to contain zero entries is NOT a parse
// failure; it parses to an empty item list so callers can distinguish a
// genuinely empty feed from a broken one.
var ErrParseFailed = errors.New("feed parse failed")

// Parser converts raw feed bytes into entity items.
type Parser struct {
	fp *gofeed.Parser
}

// NewParser creates a feed parser.
func NewParser() *Parser {
	return &Parser{fp: gofeed.NewParser()}
}

// Parse converts an RSS or Atom document into an ordered item sequence.
// Item identifiers are freshly generated per parse; the canonical link, not
// the identifier, is what later identity comparison uses. Optional fields
// that are missing from the document stay absent.
func (p *Parser) Parse(data []byte) ([]entity.Item, error) {
	feed, err := p.fp.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	now := time.Now().UTC()
	items := make([]entity.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, entity.Item{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Published:   publishedAt(it),
			Summary:     strings.TrimSpace(it.Description),
			Content:     strings.TrimSpace(it.Content),
			Author:      authorName(it),
			RetrievedAt: now,
		})
	}

	return items, nil
}

// publishedAt prefers the published timestamp and falls back to updated,
// which Atom entries often carry instead. Nil means the document carries no
// usable timestamp at all.
func publishedAt(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return it.UpdatedParsed
	}
	return nil
}

func authorName(it *gofeed.Item) string {
	for _, a := range it.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
