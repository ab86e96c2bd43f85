// Package gateway wraps the external text-generation provider behind the
// ports.RoadmapGenerator interface. The provider speaks the OpenAI
// chat-completions protocol (the HuggingFace router by default).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/ports"
)

const (
	defaultChunkSize  = 50
	defaultChunkDelay = 50 * time.Millisecond
)

const promptTemplate = `You are an expert Curriculum Architect.
User Goal: %s
Skill Level: %s

Create a detailed, step-by-step learning roadmap.
Return ONLY a JSON object with the following structure:
{
  "roadmap_title": "string",
  "summary": "string",
  "stages": [
    {
      "stage_id": "string",
      "title": "string",
      "description": "string",
      "learning_objectives": ["string"],
      "project_idea": "string"
    }
  ]
}`

// Config holds the provider endpoint, credential and model settings. All of
// it comes from process configuration; nothing is initialised at import time.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client is an explicitly constructed, injectable generation gateway.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	log         zerolog.Logger

	// chunkSize and chunkDelay pace the simulated incremental delivery.
	// The provider call itself is not streaming; the full response is
	// re-sliced and emitted at a fixed cadence.
	chunkSize  int
	chunkDelay time.Duration
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1200
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		log:         log,
		chunkSize:   defaultChunkSize,
		chunkDelay:  defaultChunkDelay,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// StreamGeneration performs one blocking chat-completion call, then emits
// the returned text in fixed-size slices with a small delay between them.
// Slices end on rune boundaries so every chunk is valid UTF-8 and the
// client's concatenation matches the provider text exactly.
// A provider failure (transport, auth, non-2xx, empty response) is returned
// before any content chunk so the caller can run its fallback.
func (c *Client) StreamGeneration(ctx context.Context, userGoal, skillLevel string, emit ports.EmitFunc) error {
	text, err := c.complete(ctx, userGoal, skillLevel)
	if err != nil {
		return err
	}

	if err := emit("[DEBUG] Connection Successful. Processing response..."); err != nil {
		return err
	}

	for start := 0; start < len(text); {
		end := nextChunk(text, start, c.chunkSize)
		if err := emit(text[start:end]); err != nil {
			return err
		}
		start = end

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.chunkDelay):
		}
	}

	return nil
}

// nextChunk returns the offset after at most n runes starting at start.
func nextChunk(s string, start, n int) int {
	end := start
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return end
}

func (c *Client) complete(ctx context.Context, userGoal, skillLevel string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, userGoal, skillLevel)

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gateway: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().Int("status", resp.StatusCode).Str("model", c.model).Msg("provider returned error status")
		return "", fmt.Errorf("gateway: provider status %d: %s", resp.StatusCode, snippet)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("gateway: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("gateway: provider returned no choices")
	}

	return chat.Choices[0].Message.Content, nil
}
