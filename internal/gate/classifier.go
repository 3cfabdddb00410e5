package gate

import (
	"context"
	"regexp"
	"strings"

	"missiongate/internal/types"
)

// verbEntry maps natural-language synonyms to one intent label.
type verbEntry struct {
	intent   string
	synonyms []string
	patterns []*regexp.Regexp
}

// verbCorpus is the local fallback classifier's corpus. Intent classification
// is normally an upstream concern; this corpus exists so the gate is usable
// standalone and in tests, with deterministic scores.
var verbCorpus = []verbEntry{
	{
		intent:   types.IntentNavigate,
		synonyms: []string{"navigate", "open", "visit", "browse"},
		patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\bgo\s+to\b`)},
	},
	{
		intent:   types.IntentExtract,
		synonyms: []string{"extract", "scrape", "pull", "collect", "grab"},
	},
	{
		intent:   types.IntentSearch,
		synonyms: []string{"search", "find"},
		patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\blook\s+(?:for|up)\b`)},
	},
	{
		intent:   types.IntentResearch,
		synonyms: []string{"research", "investigate"},
		patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\blearn\s+about\b`)},
	},
	{
		intent:   types.IntentCalculate,
		synonyms: []string{"calculate", "compute"},
	},
	{
		intent:   types.IntentRepeat,
		synonyms: []string{"repeat"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:do\s+)?(?:that|it|the\s+same)\s+again\b`),
			regexp.MustCompile(`(?i)\bone\s+more\s+time\b`),
			regexp.MustCompile(`(?i)\bsame\s+as\s+(?:before|last\s+time)\b`),
		},
	},
}

// LexicalClassifier scores intents from the verb corpus. It implements the
// upstream classifier contract locally: best-effort candidates with
// confidence, never a hard failure.
type LexicalClassifier struct{}

// Classify returns intent candidates for the message. A verb opening the
// message scores higher than one buried in it.
func (LexicalClassifier) Classify(_ context.Context, message string) []types.IntentCandidate {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return nil
	}

	scores := map[string]float64{}
	bump := func(intent string, score float64) {
		if score > scores[intent] {
			scores[intent] = score
		}
	}

	for _, entry := range verbCorpus {
		for _, syn := range entry.synonyms {
			if !containsWord(lower, syn) {
				continue
			}
			if strings.HasPrefix(lower, syn+" ") || lower == syn {
				bump(entry.intent, 0.92)
			} else {
				bump(entry.intent, 0.72)
			}
		}
		for _, p := range entry.patterns {
			if loc := p.FindStringIndex(lower); loc != nil {
				if loc[0] == 0 {
					bump(entry.intent, 0.92)
				} else {
					bump(entry.intent, 0.78)
				}
			}
		}
	}

	if mathExprPattern.MatchString(lower) {
		bump(types.IntentCalculate, 0.85)
	}

	candidates := make([]types.IntentCandidate, 0, len(scores))
	for intent, score := range scores {
		candidates = append(candidates, types.IntentCandidate{Intent: intent, Confidence: score})
	}
	return sortCandidates(candidates)
}
