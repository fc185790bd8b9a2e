package utils

import "github.com/microcosm-cc/bluemonday"

// strictPolicy strips all HTML from free-text fields before they reach the
// services. Catalog names and descriptions are rendered in the admin UI, so
// markup is never allowed through.
var strictPolicy = bluemonday.StrictPolicy()

func Sanitize(s string) string {
	return strictPolicy.Sanitize(s)
}

func SanitizePtr(s *string) {
	if s != nil {
		*s = strictPolicy.Sanitize(*s)
	}
}
