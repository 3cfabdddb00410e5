package clarify

import (
	"strings"
	"testing"

	"missiongate/internal/session"
	"missiongate/internal/types"
)

func pendingFor(field, intent, original string, options ...string) session.PendingClarification {
	return session.PendingClarification{
		Request: types.ClarificationRequest{
			Type:         types.ClarifyMissingTarget,
			MissingField: field,
			Intent:       intent,
			Options:      options,
		},
		OriginalMessage: original,
	}
}

func TestIsApprovalPhrase(t *testing.T) {
	approvals := []string{"yes", "Yes", "YES!", "approve", "approved", "do it", "go ahead", "run it", "execute", "do it."}
	for _, p := range approvals {
		if !IsApprovalPhrase(p) {
			t.Errorf("IsApprovalPhrase(%q) = false, want true", p)
		}
	}

	rejections := []string{"yes extract the emails", "no", "maybe", "execute order 66", "run it by me again", ""}
	for _, p := range rejections {
		if IsApprovalPhrase(p) {
			t.Errorf("IsApprovalPhrase(%q) = true, want false", p)
		}
	}
}

// Approval phrases never close a clarification.
func TestResolve_ApprovalDoesNotClose(t *testing.T) {
	pending := pendingFor(types.FieldSourceURL, "extract", "Extract emails")

	out := Resolve("yes", pending)
	if out.Resolved || out.Superseded {
		t.Errorf("approval must re-render the clarification, got %+v", out)
	}
}

// A complete new command supersedes the open question.
func TestResolve_NewCommandSupersedes(t *testing.T) {
	pending := pendingFor(types.FieldSourceURL, "extract", "Extract emails")

	out := Resolve("navigate to github.com", pending)
	if !out.Superseded {
		t.Errorf("complete command should supersede, got %+v", out)
	}

	// An incomplete command does not supersede; it is treated as a reply.
	out = Resolve("extract", pending)
	if out.Superseded {
		t.Error("bare verb must not supersede the clarification")
	}
}

func TestResolve_SourceURLReplies(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		options  []string
		want     string
		resolved bool
	}{
		{"Verbatim option", "https://a.com", []string{"https://a.com", "https://b.com"}, "https://a.com", true},
		{"Absolute URL", "https://example.com/path", nil, "https://example.com/path", true},
		{"Bare domain", "github.com", nil, "https://github.com", true},
		{"Numeric pick", "2", []string{"https://a.com", "https://b.com"}, "https://b.com", true},
		{"Deictic with one option", "that one", []string{"https://only.com"}, "https://only.com", true},
		{"Deictic with two options", "that one", []string{"https://a.com", "https://b.com"}, "", false},
		{"Garbage", "hmm not sure", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := pendingFor(types.FieldSourceURL, "extract", "Extract emails", tt.options...)
			out := Resolve(tt.reply, pending)
			if out.Resolved != tt.resolved {
				t.Fatalf("Resolved = %v, want %v", out.Resolved, tt.resolved)
			}
			if tt.resolved && out.Merged != "Extract emails from "+tt.want {
				t.Errorf("Merged = %q, want suffix from %q", out.Merged, tt.want)
			}
		})
	}
}

func TestResolve_NavigateUsesToGrammar(t *testing.T) {
	pending := pendingFor(types.FieldSourceURL, "navigate", "Navigate")

	out := Resolve("github.com", pending)
	if !out.Resolved {
		t.Fatal("bare domain should resolve")
	}
	if out.Merged != "Navigate to https://github.com" {
		t.Errorf("Merged = %q, want navigate-to grammar", out.Merged)
	}
}

func TestResolve_ObjectReplies(t *testing.T) {
	pending := pendingFor(types.FieldActionObject, "extract", "Extract from github.com")

	out := Resolve("the email addresses", pending)
	if !out.Resolved {
		t.Fatal("content words should resolve the object")
	}
	if out.Merged != "Extract email addresses from github.com" {
		t.Errorf("Merged = %q, want object spliced before from-clause", out.Merged)
	}

	// Only generic words: rejected.
	out = Resolve("the thing, you know", pending)
	if out.Resolved {
		t.Error("stopword-only reply must not resolve the object")
	}
}

func TestResolve_ConstraintsReplies(t *testing.T) {
	pending := pendingFor(types.FieldConstraints, "extract", "Extract the articles from news.site.com")

	out := Resolve("top 5", pending)
	if !out.Resolved {
		t.Fatal("quantity reply should resolve constraints")
	}
	if out.Merged != "Extract the articles from news.site.com top 5" {
		t.Errorf("Merged = %q", out.Merged)
	}

	out = Resolve("the latest", pending)
	if !out.Resolved {
		t.Error("'latest' is a recognizable quantity phrase")
	}

	out = Resolve("whichever", pending)
	if out.Resolved {
		t.Error("no number or quantity phrase must not resolve")
	}
}

func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		req  types.ClarificationRequest
		want string
	}{
		{types.ClarificationRequest{Type: types.ClarifyMissingObject, Intent: "extract"}, "What should I extract?"},
		{types.ClarificationRequest{Type: types.ClarifyMissingTargetNoContext}, "Which site should I work on?"},
		{types.ClarificationRequest{Type: types.ClarifyTooVague}, "I need a bit more detail"},
		{types.ClarificationRequest{Type: types.ClarifyIntentAmbiguous, Options: []string{"extract", "search"}}, "Did you want me to extract or search?"},
		{types.ClarificationRequest{Type: types.ClarifyConstraintUnclear}, "What exactly should I calculate?"},
	}

	for _, tt := range tests {
		got := Render(tt.req)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Render(%s) = %q, want it to contain %q", tt.req.Type, got, tt.want)
		}
	}
}

func TestRenderOptionsNumbered(t *testing.T) {
	got := Render(types.ClarificationRequest{
		Type:    types.ClarifyAmbiguousReference,
		Options: []string{"https://a.com", "https://b.com"},
	})
	if !strings.Contains(got, "1. https://a.com") || !strings.Contains(got, "2. https://b.com") {
		t.Errorf("Render = %q, want numbered options", got)
	}
}
