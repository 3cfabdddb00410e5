package gate

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// =============================================================================
// LEXICAL CORPUS
// =============================================================================
// Regex corpora mapping natural language to readiness signals. These are the
// local fallback layer: they must stay cheap and deterministic because they
// run on every message, with or without the external extractor.

// MetaPhrases short-circuit evaluation to a META decision. Matched as
// substrings of the lowercased message.
var MetaPhrases = []string{
	"what can you do",
	"what do you do",
	"what are you",
	"who are you",
	"how do you work",
	"what are your capabilities",
	"your capabilities",
	"what kind of tasks",
	"what do you support",
}

// InterrogativeWords mark a message as a question when it starts with one.
// "do"/"did" are deliberately absent: "do that again" and "do it" are
// commands, not questions.
var InterrogativeWords = []string{
	"what", "who", "where", "when", "why", "how", "which",
	"can", "could", "would", "should", "is", "are", "does",
}

// VagueTerms trigger the TOO_VAGUE clarification when a request is incomplete.
var VagueTerms = []string{
	"something", "stuff", "things", "whatever", "everything", "anything", "some data",
}

// ObjectKeywords are data-type words that signal an extraction object is named.
var ObjectKeywords = []string{
	"email", "emails", "name", "names", "price", "prices", "link", "links",
	"url", "urls", "title", "titles", "headline", "headlines", "image", "images",
	"phone", "phones", "number", "numbers", "address", "addresses",
	"product", "products", "review", "reviews", "article", "articles",
	"contact", "contacts", "listing", "listings", "job", "jobs",
	"result", "results", "text", "content", "data", "table", "tables",
}

// ExtractionVerbs also count as an object signal per the readiness rules.
var ExtractionVerbs = []string{
	"extract", "scrape", "pull", "collect", "grab", "fetch",
}

// urlDeicticPhrases are references whose URL meaning depends on context.
var urlDeicticPhrases = []string{
	"there", "that site", "that page", "that website", "the same site",
	"the same page", "same site", "same page", "same place",
}

// objectDeicticPhrases are references whose object meaning depends on context.
var objectDeicticPhrases = []string{
	"that", "those", "them", "the same", "same thing", "the same thing",
}

var (
	urlPattern    = regexp.MustCompile(`(?i)https?://[^\s"'<>]+`)
	domainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9][a-z0-9-]{0,62}\.)+[a-z]{2,}(?:/[^\s"'<>]*)?`)

	mathExprPattern = regexp.MustCompile(`\d\s*[-+*/^%]\s*\d`)
	mathKeywords    = []string{
		"calculate", "compute", "sum", "average", "mean", "total",
		"percent", "percentage", "multiply", "divide", "plus", "minus",
		"times", "squared", "square root",
	}

	// "extract X from Y" and friends
	objectFromPattern = regexp.MustCompile(`(?i)\b(?:extract|scrape|pull|collect|grab|fetch|get)\s+(?:all\s+)?(?:the\s+)?(.+?)\s+from\s+\S+`)

	// "top 10", "first 5", "latest"
	countPattern    = regexp.MustCompile(`(?i)\b(top|first|last)\s+(\d+)\b`)
	quantityPattern = regexp.MustCompile(`(?i)\b(latest|newest|most recent|all of them|top \d+|first \d+|last \d+)\b`)

	multiIntentPattern = regexp.MustCompile(`(?i)\b(navigate|go to|extract|scrape|search|research|calculate)\b.+\b(?:and then|then|and also)\b.+\b(navigate|go to|extract|scrape|search|research|calculate)\b`)

	wordBoundaryCache = map[string]*regexp.Regexp{}
)

// The cache is populated once at init so concurrent evaluations read it
// without locking.
func init() {
	for _, list := range [][]string{VagueTerms, ObjectKeywords, ExtractionVerbs, urlDeicticPhrases, objectDeicticPhrases, mathKeywords} {
		for _, w := range list {
			if !strings.Contains(w, " ") {
				wordBoundaryCache[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
			}
		}
	}
}

func containsWord(message, word string) bool {
	if re, ok := wordBoundaryCache[word]; ok {
		return re.MatchString(message)
	}
	return regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`).MatchString(message)
}

// IsMetaMessage reports whether the message asks about system capabilities.
func IsMetaMessage(message string) bool {
	lower := strings.ToLower(message)
	if strings.Trim(lower, " .!?") == "help" {
		return true
	}
	for _, phrase := range MetaPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// IsQuestion reports whether the message is phrased as a question.
func IsQuestion(message string) bool {
	trimmed := strings.TrimSpace(message)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	first, _ := splitFirstToken(trimmed)
	first = strings.ToLower(strings.Trim(first, ",.!"))
	for _, w := range InterrogativeWords {
		if first == w {
			return true
		}
	}
	return false
}

// HasVagueTerm reports whether the message contains a vague placeholder term.
func HasVagueTerm(message string) bool {
	lower := strings.ToLower(message)
	for _, term := range VagueTerms {
		if strings.Contains(term, " ") {
			if strings.Contains(lower, term) {
				return true
			}
		} else if containsWord(lower, term) {
			return true
		}
	}
	return false
}

// FindURL returns the first URL or recognizable domain in the message,
// normalized to a full URL, or "" if none.
func FindURL(message string) string {
	if m := urlPattern.FindString(message); m != "" {
		return strings.TrimRight(m, ".,;:!?)")
	}
	for _, m := range domainPattern.FindAllString(message, -1) {
		if LooksLikeDomain(m) {
			return NormalizeURL(m)
		}
	}
	return ""
}

// LooksLikeDomain reports whether the token is a bare domain with a real
// public suffix (e.g. "github.com", but not "main.go" or "v1.2").
func LooksLikeDomain(token string) bool {
	token = strings.TrimRight(strings.TrimSpace(token), ".,;:!?)")
	if token == "" || strings.ContainsAny(token, " \t\n") {
		return false
	}
	host := token
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if !domainPattern.MatchString(host) {
		return false
	}
	// Reject file-looking tokens whose "TLD" is not a public suffix.
	suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(host))
	return icann && suffix != ""
}

// NormalizeURL turns a bare domain into a full https URL. Already-absolute
// URLs pass through unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), ".,;:!?)")
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// HasObjectSignal reports whether the message lexically names an extraction
// object: a data-type keyword, or an extraction verb that actually carries an
// object phrase ("extract emails", not a bare "extract from there").
func HasObjectSignal(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range ObjectKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	for _, v := range ExtractionVerbs {
		if containsWord(lower, v) && ExtractObjectHeuristic(message) != "" {
			return true
		}
	}
	return false
}

// HasMathSignal reports whether the message contains a math operator or keyword.
func HasMathSignal(message string) bool {
	if mathExprPattern.MatchString(message) {
		return true
	}
	lower := strings.ToLower(message)
	for _, kw := range mathKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// HasURLDeictic reports whether the message refers to a URL by context
// ("there", "that site", ...).
func HasURLDeictic(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range urlDeicticPhrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(lower, phrase) {
				return true
			}
		} else if containsWord(lower, phrase) {
			return true
		}
	}
	return false
}

// HasObjectDeictic reports whether the message refers to an object by context.
func HasObjectDeictic(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range objectDeicticPhrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(lower, phrase) {
				return true
			}
		} else if containsWord(lower, phrase) {
			return true
		}
	}
	return false
}

// MultiIntentVerbs returns the two command verbs when the message chains two
// commands ("extract X then navigate to Y"), or nil.
func MultiIntentVerbs(message string) []string {
	m := multiIntentPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	return []string{strings.ToLower(m[1]), strings.ToLower(m[2])}
}

// ExtractObjectHeuristic pulls the object phrase from "extract X from Y"
// style messages, or "" if no pattern matches.
func ExtractObjectHeuristic(message string) string {
	if m := objectFromPattern.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	// "extract emails" with no from-clause: verb followed by the rest
	lower := strings.ToLower(message)
	for _, v := range ExtractionVerbs {
		if idx := strings.Index(lower, v+" "); idx >= 0 {
			rest := strings.TrimSpace(message[idx+len(v)+1:])
			rest = strings.TrimPrefix(rest, "all ")
			rest = strings.TrimPrefix(rest, "the ")
			if rest != "" && !strings.HasPrefix(strings.ToLower(rest), "from ") {
				if i := strings.Index(strings.ToLower(rest), " from "); i >= 0 {
					rest = rest[:i]
				}
				return strings.TrimSpace(rest)
			}
		}
	}
	return ""
}

var leadingVerbPattern = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:can you\s+)?(?:research|search(?:\s+for)?|find|look\s+up|extract|scrape|get|pull|collect|grab|fetch)\s+`)

// ObjectFallback derives an object phrase by stripping the leading command
// verb and any source clause. Last resort after the extractor and the
// from-pattern heuristic.
func ObjectFallback(message string) string {
	s := leadingVerbPattern.ReplaceAllString(strings.TrimSpace(message), "")
	lower := strings.ToLower(s)
	for _, sep := range []string{" from ", " on ", " at ", " in "} {
		if i := strings.Index(lower, sep); i >= 0 {
			s = s[:i]
			lower = lower[:i]
		}
	}
	s = urlPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "all "), "the "))
	s = strings.Trim(s, ".,;:!? ")
	if strings.EqualFold(s, strings.TrimSpace(message)) && FindURL(s) != "" {
		return ""
	}
	return s
}

// ExtractConstraintsHeuristic pulls "top N" style constraints, or "".
func ExtractConstraintsHeuristic(message string) string {
	if m := countPattern.FindStringSubmatch(message); m != nil {
		return strings.ToLower(m[1]) + " " + m[2]
	}
	if m := quantityPattern.FindString(message); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

func splitFirstToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return s[:i], strings.TrimSpace(s[i:])
		}
	}
	return s, ""
}
