package report

import (
	"regexp"
	"unicode/utf8"
)

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

const ellipsis = "..."

// Truncate shortens s to maxWidth runes, ending in an ellipsis when text
// was cut off.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}

	ellipsisLen := utf8.RuneCountInString(ellipsis)
	if maxWidth <= ellipsisLen {
		runes := []rune(ellipsis)
		return string(runes[:maxWidth])
	}

	runes := []rune(s)
	return string(runes[:maxWidth-ellipsisLen]) + ellipsis
}
