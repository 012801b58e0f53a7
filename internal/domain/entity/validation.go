package entity

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

// Field length constraints for feed metadata.
const (
	// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
	maxURLLength = 2048

	minTitleLength    = 1
	maxTitleLength    = 200
	minCategoryLength = 1
	maxCategoryLength = 50
)

// ValidateURL validates the format of a feed URL.
// It checks that the URL is well-formed, uses an HTTP/HTTPS scheme, and has a host.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateTitle checks that a feed title is between 1 and 200 characters.
// The returned error carries the actual length for a precise message.
func ValidateTitle(title string) error {
	return validateLength("title", title, minTitleLength, maxTitleLength)
}

// ValidateCategory checks that a category label is between 1 and 50 characters.
func ValidateCategory(category string) error {
	return validateLength("category", category, minCategoryLength, maxCategoryLength)
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("length must be between %d and %d characters, got %d", min, max, n),
		}
	}
	return nil
}
