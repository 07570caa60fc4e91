package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned when no reply could be obtained from the
// generation service.
var ErrUnavailable = errors.New("ai assistant unavailable")

// ReplyPrefix marks assistant replies in the chat.
const ReplyPrefix = "🤖 "

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 4 << 20

// Responder produces assistant replies for trigger messages.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
	Model() string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// GeminiConfig configures a GeminiResponder.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiResponder calls the Gemini generateContent REST endpoint. One
// instance, and its http.Client, is shared by all requests.
type GeminiResponder struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGeminiResponder creates a responder. A nil client uses a fresh
// http.Client.
func NewGeminiResponder(cfg GeminiConfig, client *http.Client) *GeminiResponder {
	if client == nil {
		client = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiResponder{cfg: cfg, client: client}
}

// Model returns the model name recorded on assistant messages.
func (g *GeminiResponder) Model() string {
	return g.cfg.Model
}

// Respond asks the model for a reply to prompt. Every failure, including the
// configured timeout elapsing, is reported as ErrUnavailable.
func (g *GeminiResponder) Respond(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", ErrUnavailable)
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ReplyPrefix + text, nil
}

func (g *GeminiResponder) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(body), 512))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("response has no candidates")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty candidate (finish reason %q)", parsed.Candidates[0].FinishReason)
	}

	log.Debug().
		Str("model", g.cfg.Model).
		Int("prompt_tokens", parsed.UsageMetadata.PromptTokenCount).
		Int("response_tokens", parsed.UsageMetadata.CandidatesTokenCount).
		Int("total_tokens", parsed.UsageMetadata.TotalTokenCount).
		Msg("Gemini reply received")

	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
