package gate

import "testing"

func TestFindURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"go to https://github.com/a/b", "https://github.com/a/b"},
		{"go to http://example.com.", "http://example.com"},
		{"navigate to github.com", "https://github.com"},
		{"check news.ycombinator.com/newest please", "https://news.ycombinator.com/newest"},
		{"open main.go", ""},
		{"version v1.2 is out", ""},
		{"extract names from there", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FindURL(tt.input); got != tt.want {
			t.Errorf("FindURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLooksLikeDomain(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"github.com", true},
		{"sub.example.co.uk", true},
		{"example.org/path", true},
		{"main.go", false},
		{"config.yaml", false},
		{"v1.2", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeDomain(tt.input); got != tt.want {
			t.Errorf("LooksLikeDomain(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"github.com", "https://github.com"},
		{"https://github.com", "https://github.com"},
		{"http://legacy.example.com", "http://legacy.example.com"},
		{"example.com.", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHasObjectSignal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"extract emails", true},
		{"get the prices from amazon.com", true},
		{"scrape product listings", true},
		{"extract from there", false}, // bare verb carries no object
		{"navigate home", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasObjectSignal(tt.input); got != tt.want {
			t.Errorf("HasObjectSignal(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExtractObjectHeuristic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"extract emails from github.com", "emails"},
		{"extract the names from there", "names"},
		{"scrape all product prices from amazon.com", "product prices"},
		{"extract emails", "emails"},
		{"extract from there", ""},
		{"navigate to github.com", ""},
	}

	for _, tt := range tests {
		if got := ExtractObjectHeuristic(tt.input); got != tt.want {
			t.Errorf("ExtractObjectHeuristic(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestObjectFallback(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"search for emails on github.com", "emails"},
		{"research email marketing trends", "email marketing trends"},
		{"look up flight prices from kayak.com", "flight prices"},
	}

	for _, tt := range tests {
		if got := ObjectFallback(tt.input); got != tt.want {
			t.Errorf("ObjectFallback(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQuestionAndMeta(t *testing.T) {
	if !IsQuestion("what happened?") {
		t.Error("trailing ? should be a question")
	}
	if !IsQuestion("how does it work") {
		t.Error("interrogative opener should be a question")
	}
	if IsQuestion("do that again") {
		t.Error("'do that again' is a command, not a question")
	}
	if !IsMetaMessage("What can you do?") {
		t.Error("capability question should be META")
	}
	if IsMetaMessage("extract emails from github.com") {
		t.Error("command should not be META")
	}
}

func TestHasMathSignal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"calculate 15 * 4", true},
		{"what is 12 plus 8", true},
		{"compute the average", true},
		{"navigate to github.com", false},
	}

	for _, tt := range tests {
		if got := HasMathSignal(tt.input); got != tt.want {
			t.Errorf("HasMathSignal(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMultiIntentVerbs(t *testing.T) {
	verbs := MultiIntentVerbs("extract the prices then navigate to checkout")
	if len(verbs) != 2 || verbs[0] != "extract" || verbs[1] != "navigate" {
		t.Errorf("MultiIntentVerbs = %v, want [extract navigate]", verbs)
	}
	if MultiIntentVerbs("extract the prices from github.com") != nil {
		t.Error("single command should not match multi-intent")
	}
}

func TestExtractConstraintsHeuristic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"extract the top 10 articles", "top 10"},
		{"get the first 5 results", "first 5"},
		{"grab the latest headlines", "latest"},
		{"extract emails", ""},
	}

	for _, tt := range tests {
		if got := ExtractConstraintsHeuristic(tt.input); got != tt.want {
			t.Errorf("ExtractConstraintsHeuristic(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
