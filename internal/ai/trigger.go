package ai

import "strings"

// IsTrigger reports whether a chat message addresses the assistant: it
// starts with "@ai" or contains "hey ai", ignoring case.
func IsTrigger(content string) bool {
	lower := strings.ToLower(content)
	return strings.HasPrefix(lower, "@ai") || strings.Contains(lower, "hey ai")
}
