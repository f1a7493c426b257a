// Package slug builds URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s and collapses every run of non-alphanumeric characters
// into a single dash.
func Make(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// MakeUnique appends a short random suffix so two equal inputs never collide.
func MakeUnique(s string) string {
	base := Make(s)
	suffix := uuid.New().String()[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
