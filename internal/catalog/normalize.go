package catalog

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"amsvault/internal/store"
)

const (
	untitled      = "Untitled"
	noDescription = "No description available"
)

var strictPolicy = bluemonday.StrictPolicy()

// normalizeStatus maps provider status labels onto the story vocabulary.
// Unknown labels are treated as ongoing.
func normalizeStatus(raw string) store.StoryStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finished airing", "finished", "ended", "canceled", "cancelled", "finished_airing":
		return store.StoryCompleted
	case "currently airing", "publishing", "currently_airing":
		return store.StoryOngoing
	case "not yet aired", "not_yet_aired":
		return store.StoryUpcoming
	}
	return store.StoryOngoing
}

func firstNonEmpty(fallback string, values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

// sanitizeText strips markup and returns plain text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func description(raw string) string {
	return firstNonEmpty(noDescription, sanitizeText(raw))
}
