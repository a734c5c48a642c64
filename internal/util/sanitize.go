package util

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9_-]`)

// SafeName converts a string into a valid compose service / container
// name: lowercase alphanumeric with hyphens and underscores.
func SafeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = nonAlphaNum.ReplaceAllString(s, "")
	s = strings.Trim(s, "-_")
	if s == "" {
		return "node"
	}
	return s
}
