// Package slugs derives URL-safe identifiers from human-readable titles.
package slugs

import (
	"github.com/gosimple/slug"
)

// Make returns the lower-case, hyphen-separated slug for title.
// "Intro to X" becomes "intro-to-x". Non-ASCII letters are transliterated.
func Make(title string) string {
	return slug.Make(title)
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && slug.IsSlug(s)
}
