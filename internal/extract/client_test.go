package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"missiongate/internal/config"
	"missiongate/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(config.ExtractorConfig{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	}, 2*time.Second)
	if c == nil {
		t.Fatal("New returned nil for enabled config")
	}
	return c
}

func modelReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		case '\\':
			out += `\\`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func TestNewDisabledReturnsNil(t *testing.T) {
	if New(config.ExtractorConfig{Enabled: false, APIKey: "k"}, 0) != nil {
		t.Error("disabled extractor should be nil")
	}
	if New(config.ExtractorConfig{Enabled: true}, 0) != nil {
		t.Error("extractor without api key should be nil")
	}
}

func TestExtractOK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply(`{"action_object": "emails", "source_url": "github.com"}`)))
	})

	got := c.Extract(context.Background(), "extract emails from github.com")
	if got.Status != types.ExtractionOK {
		t.Fatalf("status = %s, want ok", got.Status)
	}
	if got.ActionObject != "emails" || got.SourceURL != "github.com" {
		t.Errorf("fields = %+v", got)
	}
}

func TestExtractToleratesMarkdownFences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply("```json\n{\"action_object\": \"prices\", \"source_url\": \"\"}\n```")))
	})

	got := c.Extract(context.Background(), "get the prices")
	if got.Status != types.ExtractionOK || got.ActionObject != "prices" {
		t.Errorf("got %+v, want prices extracted through fences", got)
	}
}

func TestExtractServerErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := c.Extract(context.Background(), "extract emails")
	if got.Status != types.ExtractionUnavailable {
		t.Errorf("status = %s, want unavailable", got.Status)
	}
}

func TestExtractGarbageIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply("sorry, I cannot help with that")))
	})

	got := c.Extract(context.Background(), "extract emails")
	if got.Status != types.ExtractionMalformed {
		t.Errorf("status = %s, want malformed", got.Status)
	}
}

func TestExtractTimeoutIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(modelReply(`{}`)))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got := c.Extract(ctx, "extract emails")
	if got.Status != types.ExtractionUnavailable {
		t.Errorf("status = %s, want unavailable on timeout", got.Status)
	}
}
