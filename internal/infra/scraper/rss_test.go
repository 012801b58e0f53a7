package scraper_test

import (
	"errors"
	"testing"

	"feed-collector/internal/infra/scraper"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <author>alice@example.com (Alice)</author>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const atomDocument = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article 1</title>
    <link href="https://example.com/atom1"/>
    <id>atom1</id>
    <updated>2024-01-01T00:00:00Z</updated>
    <summary>Atom Summary 1</summary>
  </entry>
</feed>`

func TestParser_Parse_RSS(t *testing.T) {
	items, err := scraper.NewParser().Parse([]byte(rssDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items length = %d, want 2", len(items))
	}

	if items[0].Title != "Article 1" {
		t.Errorf("items[0].Title = %q, want %q", items[0].Title, "Article 1")
	}
	if items[0].Link != "https://example.com/article1" {
		t.Errorf("items[0].Link = %q", items[0].Link)
	}
	if items[0].Summary != "Description 1" {
		t.Errorf("items[0].Summary = %q", items[0].Summary)
	}
	if items[0].Published == nil {
		t.Error("items[0].Published should be set")
	}
	if items[1].Title != "Article 2" {
		t.Errorf("items[1].Title = %q", items[1].Title)
	}
}

func TestParser_Parse_Atom(t *testing.T) {
	items, err := scraper.NewParser().Parse([]byte(atomDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items length = %d, want 1", len(items))
	}
	if items[0].Title != "Atom Article 1" {
		t.Errorf("Title = %q", items[0].Title)
	}
	if items[0].Link != "https://example.com/atom1" {
		t.Errorf("Link = %q", items[0].Link)
	}
	if items[0].Published == nil {
		t.Error("Published should fall back to the Atom updated timestamp")
	}
}

func TestParser_Parse_UnrecognizedDocument(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"html page", `<!DOCTYPE html><html><body>not a feed</body></html>`},
		{"plain text", `definitely not xml`},
		{"unrelated xml", `<?xml version="1.0"?><config><key>v</key></config>`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scraper.NewParser().Parse([]byte(tt.data))
			if !errors.Is(err, scraper.ErrParseFailed) {
				t.Errorf("Parse() error = %v, want ErrParseFailed", err)
			}
		})
	}
}

func TestParser_Parse_EmptyFeedIsNotAnError(t *testing.T) {
	empty := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Nothing Here</title>
    <link>https://example.com</link>
    <description>valid but empty</description>
  </channel>
</rss>`

	items, err := scraper.NewParser().Parse([]byte(empty))
	if err != nil {
		t.Fatalf("a recognizable empty feed must parse cleanly, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items length = %d, want 0", len(items))
	}
}

func TestParser_Parse_MissingOptionalFields(t *testing.T) {
	minimal := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Minimal</title>
    <link>https://example.com</link>
    <description>d</description>
    <item>
      <title>Bare Item</title>
      <link>https://example.com/bare</link>
    </item>
  </channel>
</rss>`

	items, err := scraper.NewParser().Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items length = %d, want 1", len(items))
	}

	it := items[0]
	if it.Published != nil {
		t.Error("Published should be absent, not defaulted")
	}
	if it.Summary != "" || it.Content != "" || it.Author != "" {
		t.Errorf("optional fields should be empty: summary=%q content=%q author=%q",
			it.Summary, it.Content, it.Author)
	}
	if it.RetrievedAt.IsZero() {
		t.Error("RetrievedAt should be stamped")
	}
}

func TestParser_Parse_FreshIdentifiersPerParse(t *testing.T) {
	p := scraper.NewParser()

	first, err := p.Parse([]byte(rssDocument))
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Parse([]byte(rssDocument))
	if err != nil {
		t.Fatal(err)
	}

	if first[0].ID == "" || second[0].ID == "" {
		t.Fatal("item IDs should be generated")
	}
	if first[0].ID == second[0].ID {
		t.Error("IDs must be regenerated each parse; links carry identity")
	}
	if first[0].Link != second[0].Link {
		t.Error("links must be stable across parses")
	}
}
