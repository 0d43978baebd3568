// ABOUTME: Gemini REST client for answering support questions.
// ABOUTME: Retries transient failures with a shrinking prompt and reports only text-or-empty.

package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// languageLabels maps short client-reported tags to names used as a hint for
// the model. Unknown tags pass through unchanged.
var languageLabels = map[string]string{
	"en": "English",
	"es": "Spanish",
	"pt": "Portuguese",
	"fr": "French",
	"de": "German",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"ar": "Arabic",
}

// generateRequest is the minimal request shape for the generateContent endpoint.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the minimal response shape returned by generateContent.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client answers user questions through the Gemini generateContent endpoint,
// grounding answers in an optional knowledge-base document.
type Client struct {
	baseURL       string
	model         string
	apiKey        string
	httpClient    *http.Client
	knowledgeBase string
	retryDelays   []time.Duration
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithKnowledgeBase supplies the JSON knowledge-base document included as
// context on the first attempts.
func WithKnowledgeBase(kb string) Option {
	return func(c *Client) {
		c.knowledgeBase = kb
	}
}

// WithRetryDelays overrides the per-attempt delay schedule (used in tests).
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) {
		c.retryDelays = delays
	}
}

// New creates a Gemini client. Pass nil logger for default.
func New(apiKey, model string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		// Delay before attempts 2 and 3; transient 5xx/quota issues
		// usually clear within a couple of seconds.
		retryDelays: []time.Duration{0, 800 * time.Millisecond, 1600 * time.Millisecond},
		logger:      logger.With("component", "answer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer generates an answer in the given language. It returns the generated
// text, or an empty string when generation failed after all retries. The
// final attempt drops the knowledge-base context to shrink the payload.
func (c *Client) Answer(ctx context.Context, question, languageCode string) string {
	lang := strings.ToLower(strings.TrimSpace(languageCode))
	if lang == "" {
		lang = "en"
	}
	label, ok := languageLabels[lang]
	if !ok {
		label = lang
	}

	withKB := c.knowledgeBase != ""
	for attempt := 1; attempt <= len(c.retryDelays); attempt++ {
		if err := sleepCtx(ctx, c.retryDelays[attempt-1]); err != nil {
			return ""
		}

		start := time.Now()
		text, retryable, err := c.generate(ctx, question, label, withKB)
		if err == nil {
			c.logger.Info("answer generated",
				"attempt", attempt,
				"lang", label,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"text_len", len(text))
			return text
		}

		c.logger.Error("answer generation failed",
			"attempt", attempt,
			"lang", label,
			"error", err)

		if !retryable {
			break
		}
		// Penultimate failure: retry once more with a slimmer prompt.
		if attempt == len(c.retryDelays)-1 && withKB {
			c.logger.Debug("retrying without knowledge-base context")
			withKB = false
		}
	}

	return ""
}

// generate performs a single generateContent call. The second return value
// reports whether the failure is worth retrying (5xx and quota exhaustion).
func (c *Client) generate(ctx context.Context, question, langLabel string, withKB bool) (string, bool, error) {
	systemPrompt := fmt.Sprintf(
		"You are a helpful, technically skilled support manager for the eSIM store globustele.com. "+
			"Answer strictly in the user's language: %s. Be concise, accurate and practical. "+
			"Use the provided knowledge base in json format. If a policy or price is unknown, "+
			"say that it's unclear and suggest contacting support.", langLabel)

	// Gemini expects "user" or "model" roles; the instruction rides along
	// as a user message to avoid invalid-role errors.
	contents := []content{
		{Role: "user", Parts: []part{{Text: systemPrompt}}},
	}
	if withKB {
		contents = append(contents, content{
			Role:  "user",
			Parts: []part{{Text: "Knowledge base content:\n" + c.knowledgeBase}},
		})
	}
	contents = append(contents, content{
		Role:  "user",
		Parts: []part{{Text: fmt.Sprintf("User question (reply in %s):\n%s", langLabel, question)}},
	})

	reqBody := generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			TopP:            0.9,
			MaxOutputTokens: 1024,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", false, fmt.Errorf("unmarshaling response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range genResp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(sb.String()), false, nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
