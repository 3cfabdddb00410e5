// Package extract implements the external best-effort field extractor over
// the Gemini generateContent API. The gate treats it as untrusted: any
// failure degrades to the local regex heuristics, never to an error.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"missiongate/internal/config"
	"missiongate/internal/logging"
	"missiongate/internal/types"
)

const extractionPrompt = `You label task requests. Given the user message below, respond with ONLY a JSON object, no prose:
{"action_object": "<the data or thing the user wants, or empty>", "source_url": "<the URL or domain mentioned, or empty>"}

User message: %s`

// Client calls the extraction model over HTTP. Implements types.FieldExtractor.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates an extractor client from config, or nil when the extractor is
// disabled or unconfigured. A nil extractor is valid: the engine runs on
// heuristics alone.
func New(cfg config.ExtractorConfig, timeout time.Duration) *Client {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type extractedFields struct {
	ActionObject string `json:"action_object"`
	SourceURL    string `json:"source_url"`
}

// Extract asks the model to pull structured fields from the message.
// Transport or API failures report unavailable; unparseable model output
// reports malformed. Neither is an error to the caller.
func (c *Client) Extract(ctx context.Context, message string) types.Extraction {
	log := logging.Get(logging.CategoryExtract)
	timer := logging.StartTimer(logging.CategoryExtract, "Extract")
	defer timer.Stop()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(extractionPrompt, message)}}}},
	})
	if err != nil {
		return types.Extraction{Status: types.ExtractionUnavailable}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.Extraction{Status: types.ExtractionUnavailable}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("extractor request failed: %v", err)
		return types.Extraction{Status: types.ExtractionUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("extractor returned status %d", resp.StatusCode)
		return types.Extraction{Status: types.ExtractionUnavailable}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.Extraction{Status: types.ExtractionUnavailable}
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		log.Warn("extractor response not JSON: %v", err)
		return types.Extraction{Status: types.ExtractionMalformed}
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return types.Extraction{Status: types.ExtractionMalformed}
	}

	fields, ok := parseModelOutput(gen.Candidates[0].Content.Parts[0].Text)
	if !ok {
		return types.Extraction{Status: types.ExtractionMalformed}
	}

	return types.Extraction{
		Status:       types.ExtractionOK,
		ActionObject: strings.TrimSpace(fields.ActionObject),
		SourceURL:    strings.TrimSpace(fields.SourceURL),
	}
}

// parseModelOutput tolerates markdown fences and surrounding prose; the JSON
// object is located by brace matching.
func parseModelOutput(text string) (extractedFields, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return extractedFields{}, false
	}

	var fields extractedFields
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return extractedFields{}, false
	}
	return fields, true
}
