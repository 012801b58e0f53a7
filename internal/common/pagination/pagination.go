// Package pagination provides offset-based pagination helpers shared by the
// read-side query surface.
package pagination

// Params represents a page request.
type Params struct {
	Page  int // 1-based page number
	Limit int // Items per page
}

// Config holds pagination limits.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the default pagination configuration:
// page=1, limit=20, max=100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// Normalize clamps the params to sane values under the given config.
// Non-positive page/limit fall back to defaults; limit is capped at MaxLimit.
func (p Params) Normalize(cfg Config) Params {
	if p.Page < 1 {
		p.Page = cfg.DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = cfg.DefaultLimit
	}
	if p.Limit > cfg.MaxLimit {
		p.Limit = cfg.MaxLimit
	}
	return p
}

// Metadata contains pagination metadata included in query responses.
type Metadata struct {
	Total      int64 `json:"total"`       // Total number of items across all pages
	Page       int   `json:"page"`        // Current page number (1-based)
	Limit      int   `json:"limit"`       // Items per page
	TotalPages int   `json:"total_pages"` // Calculated total number of pages
}

// CalculateOffset converts a 1-based page number into a slice offset.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages returns ceil(total/limit), with a minimum of 1 page
// so an empty result set still reports one (empty) page.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
