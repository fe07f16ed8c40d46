// Package ai drafts promotional copy for the admin console using Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const model = "gemini-2.5-flash"

// ErrDisabled is returned when no API key was configured.
var ErrDisabled = errors.New("ai: no api key configured")

// Copywriter generates short ad texts from admin prompts.
type Copywriter struct {
	client *genai.Client
}

// New dials Gemini. An empty key returns a disabled copywriter rather than
// an error so the rest of the platform runs without AI.
func New(ctx context.Context, apiKey string) (*Copywriter, error) {
	if apiKey == "" {
		return &Copywriter{}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Copywriter{client: client}, nil
}

// Enabled reports whether a key was configured.
func (c *Copywriter) Enabled() bool { return c.client != nil }

// Draft turns a short prompt into one piece of banner copy.
func (c *Copywriter) Draft(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", ErrDisabled
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("ai: empty prompt")
	}

	m := c.client.GenerativeModel(model)
	resp, err := m.GenerateContent(ctx, genai.Text(
		"Write one short, punchy promotional banner line for a tap-to-earn game. "+
			"Plain text only, no markdown, under 120 characters. Brief: "+prompt,
	))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}
	draft := strings.TrimSpace(out.String())
	if draft == "" {
		return "", errors.New("ai: empty response")
	}
	return draft, nil
}

// Close releases the underlying client.
func (c *Copywriter) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
