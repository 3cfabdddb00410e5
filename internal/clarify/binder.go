package clarify

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"missiongate/internal/gate"
	"missiongate/internal/logging"
	"missiongate/internal/session"
	"missiongate/internal/types"
)

// Outcome is the binder's verdict on a reply to a pending clarification.
type Outcome struct {
	// Resolved: the reply supplied the missing field; Merged holds the
	// original message with the value spliced in, ready for re-evaluation.
	Resolved bool
	Merged   string

	// Superseded: the reply is a complete new command; the pending
	// clarification should be cleared and the message evaluated fresh.
	Superseded bool

	// Neither set: re-render the same clarification.
}

// commandVerbPattern marks replies that open with a recognized command verb.
var commandVerbPattern = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(navigate|go to|open|visit|extract|scrape|search|find|research|calculate|compute|repeat)\b`)

// genericReplyWords are stripped from object replies; a reply made only of
// these carries no object.
var genericReplyWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "i": {}, "you": {}, "want": {}, "need": {},
	"to": {}, "please": {}, "me": {}, "of": {}, "for": {}, "and": {}, "just": {},
	"some": {}, "get": {}, "that": {}, "this": {}, "it": {}, "one": {},
	"thing": {}, "things": {}, "stuff": {}, "whatever": {}, "anything": {},
	"something": {}, "yes": {}, "ok": {}, "okay": {}, "sure": {},
}

var deicticReplyPhrases = []string{"that one", "the first one", "the same one", "that", "it"}

var numberPattern = regexp.MustCompile(`\d`)

// Resolve interprets a reply to a pending clarification. Rules, in order:
// approval phrases never close a clarification; a complete new command
// supersedes it; otherwise field-specific acceptance decides.
func Resolve(message string, pending session.PendingClarification) Outcome {
	log := logging.Get(logging.CategoryClarify)
	reply := strings.TrimSpace(message)

	// Approval cannot close a clarification; the same question is re-asked.
	if IsApprovalPhrase(reply) {
		log.Debug("approval phrase %q rejected while clarification pending", reply)
		return Outcome{}
	}

	// A complete new command supersedes the open question.
	if looksLikeNewCommand(reply) {
		log.Debug("reply %q supersedes pending clarification", reply)
		return Outcome{Superseded: true}
	}

	req := pending.Request
	switch req.MissingField {
	case types.FieldSourceURL:
		if value, ok := resolveSourceURLReply(reply, req.Options); ok {
			return resolved(pending, value)
		}
	case types.FieldActionObject:
		if value, ok := resolveObjectReply(reply); ok {
			return resolved(pending, value)
		}
	case types.FieldConstraints:
		if value, ok := resolveConstraintsReply(reply); ok {
			return resolved(pending, value)
		}
	}

	log.Debug("reply %q did not resolve field %s", reply, req.MissingField)
	return Outcome{}
}

func resolved(pending session.PendingClarification, value string) Outcome {
	merged := MergeReply(pending.OriginalMessage, pending.Request, value)
	logging.Get(logging.CategoryClarify).Debug("field %s resolved to %q, merged=%q",
		pending.Request.MissingField, value, merged)
	return Outcome{Resolved: true, Merged: merged}
}

// looksLikeNewCommand reports whether the reply reads as a self-contained
// command: a recognized verb plus enough substance to evaluate on its own.
func looksLikeNewCommand(reply string) bool {
	if !commandVerbPattern.MatchString(reply) {
		return false
	}
	return gate.FindURL(reply) != "" || gate.HasObjectSignal(reply) || gate.HasMathSignal(reply)
}

// resolveSourceURLReply accepts an offered option verbatim, an absolute URL,
// a bare domain, a numeric option pick, or a deictic reply when exactly one
// option was offered.
func resolveSourceURLReply(reply string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(reply, opt) {
			return opt, true
		}
	}

	if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}

	if u, err := url.Parse(reply); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return reply, true
	}

	if gate.LooksLikeDomain(reply) {
		return gate.NormalizeURL(reply), true
	}

	lower := strings.ToLower(strings.TrimRight(reply, ".!"))
	for _, phrase := range deicticReplyPhrases {
		if lower == phrase {
			if len(options) == 1 {
				return options[0], true
			}
			return "", false
		}
	}

	return "", false
}

// resolveObjectReply accepts any reply with meaningful content words left
// after stripping generic terms.
func resolveObjectReply(reply string) (string, bool) {
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(reply)) {
		word = strings.Trim(word, ".,!?:;\"'")
		if word == "" {
			continue
		}
		if _, generic := genericReplyWords[word]; generic {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

// resolveConstraintsReply accepts replies containing a number or a
// recognizable quantity phrase.
func resolveConstraintsReply(reply string) (string, bool) {
	if numberPattern.MatchString(reply) {
		return strings.TrimSpace(reply), true
	}
	if c := gate.ExtractConstraintsHeuristic(reply); c != "" {
		return c, true
	}
	return "", false
}

// MergeReply splices a resolved value back into the original triggering
// message using field-appropriate grammar, so the merged text re-evaluates
// as if the user had said it in one breath.
func MergeReply(original string, req types.ClarificationRequest, value string) string {
	original = strings.TrimRight(strings.TrimSpace(original), ".!?")

	switch req.MissingField {
	case types.FieldSourceURL:
		if req.Intent == types.IntentNavigate {
			return original + " to " + value
		}
		return original + " from " + value

	case types.FieldActionObject:
		lower := strings.ToLower(original)
		if i := strings.Index(lower, " from "); i >= 0 {
			return original[:i] + " " + value + original[i:]
		}
		return original + " " + value

	case types.FieldConstraints:
		return original + " " + value

	default:
		return original + " " + value
	}
}
