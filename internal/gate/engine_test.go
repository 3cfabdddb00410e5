package gate

import (
	"context"
	"testing"

	"missiongate/internal/types"
)

// fakeView is a read-only context stub for engine tests.
type fakeView struct {
	urls    []string
	objects []string
	intents []string
	last    *types.MissionFields
}

func (v *fakeView) RecentSourceURLs() []string     { return v.urls }
func (v *fakeView) RecentActionObjects() []string  { return v.objects }
func (v *fakeView) RecentIntents() []string        { return v.intents }
func (v *fakeView) LastReadyMission() (types.MissionFields, bool) {
	if v.last == nil {
		return types.MissionFields{}, false
	}
	return *v.last, true
}

func one(intent string, confidence float64) []types.IntentCandidate {
	return []types.IntentCandidate{{Intent: intent, Confidence: confidence}}
}

func TestEvaluate_Decisions(t *testing.T) {
	engine := NewEngine(nil, 0)

	tests := []struct {
		name       string
		message    string
		candidates []types.IntentCandidate
		view       *fakeView
		want       types.Decision
	}{
		{"Meta capability question", "What can you do?", one("navigate", 0.9), &fakeView{}, types.DecisionMeta},
		{"Meta without question mark", "tell me what are your capabilities", one("navigate", 0.9), &fakeView{}, types.DecisionMeta},
		{"Plain question", "Is the sky blue?", one("research", 0.9), &fakeView{}, types.DecisionQuestion},
		{"Interrogative opener", "how does this page load", one("navigate", 0.9), &fakeView{}, types.DecisionQuestion},
		{"Close confidences", "extract emails from github.com", []types.IntentCandidate{{Intent: "extract", Confidence: 0.60}, {Intent: "search", Confidence: 0.55}}, &fakeView{}, types.DecisionAmbiguous},
		{"Clear winner", "extract emails from github.com", []types.IntentCandidate{{Intent: "extract", Confidence: 0.90}, {Intent: "search", Confidence: 0.40}}, &fakeView{}, types.DecisionReady},
		{"Chained commands", "extract the prices then navigate to the checkout", one("extract", 0.9), &fakeView{}, types.DecisionAmbiguous},
		{"No candidates", "handle the usual things", nil, &fakeView{}, types.DecisionIncomplete},
		{"Unknown intent", "frobnicate the widgets", one("frobnicate", 0.9), &fakeView{}, types.DecisionIncomplete},
		{"Navigate with domain", "Navigate to github.com", one("navigate", 0.92), &fakeView{}, types.DecisionReady},
		{"Navigate without target", "Navigate to the site", one("navigate", 0.92), &fakeView{}, types.DecisionIncomplete},
		{"Calculate with expression", "calculate 15 * 4 + 2", one("calculate", 0.95), &fakeView{}, types.DecisionReady},
		{"Repeat without history", "do that again", one("repeat", 0.9), &fakeView{}, types.DecisionIncomplete},
		{"Repeat with history", "do that again", one("repeat", 0.9), &fakeView{last: &types.MissionFields{Intent: "navigate", SourceURL: "https://a.com"}}, types.DecisionReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Evaluate(context.Background(), tt.message, tt.candidates, tt.view)
			if got.Decision != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.message, got.Decision, tt.want)
			}
			if got.Decision == types.DecisionReady && got.Clarification != nil {
				t.Error("READY result must not carry a clarification")
			}
			if got.Decision != types.DecisionReady && got.Fields != nil {
				t.Error("non-READY result must not carry mission fields")
			}
		})
	}
}

// Scenario: "Extract emails" with no URL anywhere.
func TestEvaluate_ExtractWithoutSource(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "Extract emails", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	if len(got.MissingFields) != 1 || got.MissingFields[0] != types.FieldSourceURL {
		t.Errorf("missing = %v, want [source_url]", got.MissingFields)
	}
	if got.Clarification.Type != types.ClarifyMissingTargetNoContext {
		t.Errorf("clarification type = %s, want MISSING_TARGET_NO_CONTEXT", got.Clarification.Type)
	}
}

// Scenario: deictic reference with exactly one remembered URL resolves.
func TestEvaluate_DeicticResolvesWithUniqueURL(t *testing.T) {
	engine := NewEngine(nil, 0)
	view := &fakeView{urls: []string{"https://example.com"}}

	got := engine.Evaluate(context.Background(), "Extract names from there", one("extract", 0.9), view)
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if got.Fields.SourceURL != "https://example.com" {
		t.Errorf("source_url = %q, want https://example.com", got.Fields.SourceURL)
	}
	if got.Fields.ActionObject != "names" {
		t.Errorf("action_object = %q, want names", got.Fields.ActionObject)
	}
}

// Scenario: two remembered URLs make the same reference ambiguous.
func TestEvaluate_DeicticAmbiguousWithTwoURLs(t *testing.T) {
	engine := NewEngine(nil, 0)
	view := &fakeView{urls: []string{"https://a.com", "https://b.com"}}

	got := engine.Evaluate(context.Background(), "Extract the emails from there", one("extract", 0.9), view)
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	if got.Clarification.Type != types.ClarifyAmbiguousReference {
		t.Errorf("clarification type = %s, want AMBIGUOUS_REFERENCE", got.Clarification.Type)
	}
	if len(got.Clarification.Options) != 2 {
		t.Errorf("options = %v, want both remembered URLs", got.Clarification.Options)
	}
}

// Uniqueness gating: an empty buffer never resolves, cue or not.
func TestEvaluate_EmptyBufferNeverResolves(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "Extract names from there", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
}

// Uniqueness gating: one buffered URL without a cue does not resolve.
func TestEvaluate_NoCueNoResolution(t *testing.T) {
	engine := NewEngine(nil, 0)
	view := &fakeView{urls: []string{"https://example.com"}}

	got := engine.Evaluate(context.Background(), "Extract the emails", one("extract", 0.9), view)
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	// The remembered URL is offered as an option instead.
	if got.Clarification.Type != types.ClarifyMissingTarget {
		t.Errorf("clarification type = %s, want MISSING_TARGET", got.Clarification.Type)
	}
	if len(got.Clarification.Options) != 1 || got.Clarification.Options[0] != "https://example.com" {
		t.Errorf("options = %v, want the remembered URL", got.Clarification.Options)
	}
}

func TestEvaluate_VagueTermPrecedence(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "extract some stuff", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	if got.Clarification.Type != types.ClarifyTooVague {
		t.Errorf("clarification type = %s, want TOO_VAGUE (vague terms take precedence)", got.Clarification.Type)
	}
}

func TestEvaluate_MissingObjectOnSearch(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "search github.com", one("search", 0.9), &fakeView{})
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	if got.Clarification.Type != types.ClarifyMissingObject {
		t.Errorf("clarification type = %s, want MISSING_OBJECT", got.Clarification.Type)
	}
}

func TestEvaluate_RepeatCopiesPriorMission(t *testing.T) {
	engine := NewEngine(nil, 0)
	prior := types.MissionFields{
		Intent:       "extract",
		ActionObject: "emails",
		SourceURL:    "https://example.com",
		Constraints:  "top 10",
	}
	view := &fakeView{last: &prior}

	got := engine.Evaluate(context.Background(), "do the same again", one("repeat", 0.9), view)
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if *got.Fields != prior {
		t.Errorf("fields = %+v, want prior mission %+v", *got.Fields, prior)
	}
}

func TestEvaluate_TierObservability(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "What can you do?", one("navigate", 0.95), &fakeView{})
	if got.Tier != types.TierCertain {
		t.Errorf("tier = %s, want CERTAIN even on META", got.Tier)
	}

	got = engine.Evaluate(context.Background(), "hello", nil, &fakeView{})
	if got.Tier != types.TierUnknown {
		t.Errorf("tier = %s, want UNKNOWN with no candidates", got.Tier)
	}
}

func TestEvaluate_CandidatesSortedDescending(t *testing.T) {
	engine := NewEngine(nil, 0)
	candidates := []types.IntentCandidate{
		{Intent: "search", Confidence: 0.30},
		{Intent: "extract", Confidence: 0.90},
		{Intent: "navigate", Confidence: 0.60},
	}

	got := engine.Evaluate(context.Background(), "extract emails from github.com", candidates, &fakeView{})
	if got.Candidates[0].Intent != "extract" || got.Candidates[1].Intent != "navigate" || got.Candidates[2].Intent != "search" {
		t.Errorf("candidates not sorted: %+v", got.Candidates)
	}
	// Input slice must not be reordered.
	if candidates[0].Intent != "search" {
		t.Error("Evaluate mutated its input candidate slice")
	}
}

// =============================================================================
// EXTRACTOR FALLBACK CHAIN
// =============================================================================

type stubExtractor struct {
	result types.Extraction
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ string) types.Extraction {
	s.calls++
	return s.result
}

func TestPopulateFields_PrefersExtractor(t *testing.T) {
	ext := &stubExtractor{result: types.Extraction{
		Status:       types.ExtractionOK,
		ActionObject: "customer emails",
		SourceURL:    "example.org",
	}}
	engine := NewEngine(ext, 0)

	got := engine.Evaluate(context.Background(), "extract emails from example.org", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if got.Fields.ActionObject != "customer emails" {
		t.Errorf("action_object = %q, want extractor value", got.Fields.ActionObject)
	}
	if got.Fields.SourceURL != "https://example.org" {
		t.Errorf("source_url = %q, want normalized extractor value", got.Fields.SourceURL)
	}
	if ext.calls != 1 {
		t.Errorf("extractor called %d times, want 1", ext.calls)
	}
}

func TestPopulateFields_UnavailableExtractorFallsBack(t *testing.T) {
	ext := &stubExtractor{result: types.Extraction{Status: types.ExtractionUnavailable}}
	engine := NewEngine(ext, 0)

	got := engine.Evaluate(context.Background(), "extract emails from example.org", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if got.Fields.ActionObject != "emails" {
		t.Errorf("action_object = %q, want heuristic fallback 'emails'", got.Fields.ActionObject)
	}
	if got.Fields.SourceURL != "https://example.org" {
		t.Errorf("source_url = %q, want heuristic fallback", got.Fields.SourceURL)
	}
}

func TestPopulateFields_MalformedExtractorFallsBack(t *testing.T) {
	ext := &stubExtractor{result: types.Extraction{Status: types.ExtractionMalformed}}
	engine := NewEngine(ext, 0)

	got := engine.Evaluate(context.Background(), "Navigate to github.com", one("navigate", 0.9), &fakeView{})
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if got.Fields.SourceURL != "https://github.com" {
		t.Errorf("source_url = %q, want https://github.com", got.Fields.SourceURL)
	}
	if got.Fields.ActionTarget != "https://github.com" {
		t.Errorf("action_target = %q, want navigate target set", got.Fields.ActionTarget)
	}
}

// The extractor is never consulted for non-READY paths; a failing extractor
// must never promote a message to READY.
func TestExtractorNeverForcesReady(t *testing.T) {
	ext := &stubExtractor{result: types.Extraction{
		Status:    types.ExtractionOK,
		SourceURL: "https://sneaky.example.com",
	}}
	engine := NewEngine(ext, 0)

	got := engine.Evaluate(context.Background(), "Extract emails", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionIncomplete {
		t.Fatalf("decision = %s, want INCOMPLETE", got.Decision)
	}
	if ext.calls != 0 {
		t.Errorf("extractor called %d times on INCOMPLETE path, want 0", ext.calls)
	}
}

func TestEvaluate_ConstraintsCaptured(t *testing.T) {
	engine := NewEngine(nil, 0)

	got := engine.Evaluate(context.Background(), "extract the top 10 articles from news.ycombinator.com", one("extract", 0.9), &fakeView{})
	if got.Decision != types.DecisionReady {
		t.Fatalf("decision = %s, want READY", got.Decision)
	}
	if got.Fields.Constraints != "top 10" {
		t.Errorf("constraints = %q, want 'top 10'", got.Fields.Constraints)
	}
}
