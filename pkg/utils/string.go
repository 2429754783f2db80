package utils

// Truncate cuts s to at most maxLen runes and marks the cut with "...".
// Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:max(maxLen, 0)]) + "..."
}
