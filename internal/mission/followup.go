package mission

import (
	"regexp"
	"strings"
)

// executionVerbPattern matches replies that ask for new work rather than
// asking about work already done.
var executionVerbPattern = regexp.MustCompile(`(?i)\b(navigate|go to|open|visit|extract|scrape|pull|collect|grab|search|find|research|calculate|compute|repeat|run|execute)\b`)

var followUpOpeners = []string{
	"how many", "how much", "what did", "what was", "what were",
	"which ones", "show me what", "summarize", "anything interesting",
}

// IsArtifactFollowUp reports whether the message reads as a question about
// the last execution result. Follow-ups always end in "?"; questions that
// name a new action are not follow-ups and go through the readiness gate.
func IsArtifactFollowUp(message string) bool {
	trimmed := strings.TrimSpace(message)
	if !strings.HasSuffix(trimmed, "?") {
		return false
	}

	lower := strings.ToLower(trimmed)
	if executionVerbPattern.MatchString(lower) {
		return false
	}
	for _, opener := range followUpOpeners {
		if strings.HasPrefix(lower, opener) {
			return true
		}
	}
	return false
}
