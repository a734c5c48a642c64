package docker

import "regexp"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes terminal color and cursor codes from command
// output so surfaced errors are plain, log-parseable text.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
