package utils

import (
	"github.com/google/uuid"
)

// NewEventID derives a stable slug id from the Portuguese title and the
// event year, e.g. ("Culto", "2026-05-01") -> "culto-2026". The id is
// generated once at creation and never changes afterwards. taken reports
// whether an id is already in use in the catalog.
func NewEventID(titlePT, date string, taken func(string) bool) string {
	slug := Slugify(titlePT)
	if slug == "" {
		slug = "event-" + uuid.New().String()[:8]
	}

	if len(date) >= 4 && date != "unknown" {
		slug = slug + "-" + date[:4]
	}

	if !taken(slug) {
		return slug
	}

	// Same title and year already exists; disambiguate with a short suffix.
	return slug + "-" + uuid.New().String()[:8]
}
