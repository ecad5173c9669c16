// ABOUTME: Deterministic title derivation from a conversation's first message
// ABOUTME: Pure function, invoked exactly once per conversation

package conversation

import "strings"

const (
	// titleMaxLen is the truncation threshold in characters.
	titleMaxLen = 40

	titleEllipsis = "..."
)

// TitleForMessage derives a conversation title from its first message text.
// Text at or under the threshold is used unchanged; longer text is truncated
// at the threshold, trailing whitespace trimmed, with an ellipsis appended.
func TitleForMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxLen {
		return text
	}
	return strings.TrimRight(string(runes[:titleMaxLen]), " \t\n") + titleEllipsis
}
