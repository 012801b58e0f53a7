// Package registry provides use cases for managing registered feeds.
// It implements business logic for creating, updating, deleting, and querying
// feeds, including validation, URL uniqueness, and optional reachability probes.
package registry

import (
	"errors"

	"feed-collector/internal/domain/entity"
)

// Sentinel errors for feed registry operations.
var (
	// ErrDuplicateFeedURL indicates that a feed with the same URL is
	// already registered. It aliases the entity-level sentinel so callers
	// can match at either layer.
	ErrDuplicateFeedURL = entity.ErrDuplicateURL

	// ErrFeedNotFound indicates that the requested feed was not found.
	// This error is typically returned when attempting to retrieve, update,
	// or remove a feed that does not exist in the registry.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrFeedUnreachable indicates that a reachability probe was requested
	// at registration time and the feed URL did not respond.
	ErrFeedUnreachable = errors.New("feed URL is unreachable")
)
