package urlutil

import (
	"regexp"
	"strings"
)

var (
	anchorSeparators = regexp.MustCompile("[`$&+,:;=?@|'.<>^*()\\\\/%!®： ]")
	anchorLeading    = regexp.MustCompile(`^[0-9-]`)
	anchorSpaces     = regexp.MustCompile(`[\s\p{Zs}]+`)
	anchorTrailing   = regexp.MustCompile(`-+$`)
	emojis           = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2300}-\x{23FF}\x{2B00}-\x{2BFF}\x{FE00}-\x{FE0F}\x{200D}\x{20E3}\x{E0020}-\x{E007F}]`)
)

// AnchorValue turns a heading text into the id used for in-page anchors.
// The first '#' is dropped, punctuation becomes word separators, a leading
// digit or dash is replaced by 'X', and emojis are removed.
func AnchorValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Replace(s, "#", "", 1)
	s = anchorSeparators.ReplaceAllString(s, " ")
	s = anchorLeading.ReplaceAllString(s, "X")
	s = anchorSpaces.ReplaceAllString(s, "-")
	s = anchorTrailing.ReplaceAllString(s, "")
	return RemoveEmojis(s)
}

// RemoveEmojis strips pictographic characters and their joiners/modifiers.
func RemoveEmojis(s string) string {
	return emojis.ReplaceAllString(s, "")
}
