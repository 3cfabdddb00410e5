// Package clarify renders clarification questions and interprets the user's
// replies to them. The binder never creates missions; it only produces text
// that is fed back into the readiness engine.
package clarify

import "strings"

// approvalPhrases is the fixed set of phrases that approve a pending mission.
// Matched exactly after lowercasing and stripping trailing punctuation, so
// "extract yes-men from the site" is not an approval.
var approvalPhrases = map[string]struct{}{
	"yes":      {},
	"approve":  {},
	"approved": {},
	"do it":    {},
	"go ahead": {},
	"run it":   {},
	"execute":  {},
}

// IsApprovalPhrase reports whether the message is an exact approval phrase,
// allowing trailing punctuation.
func IsApprovalPhrase(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, "!. ")
	_, ok := approvalPhrases[normalized]
	return ok
}
