// Package llm generates improvement suggestions for candidates using
// Google Gemini. Entirely optional: the scoring pipeline never depends
// on it.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// defaultModel is the Gemini model used for suggestion generation.
const defaultModel = "gemini-1.5-flash"

// Client wraps the Gemini API for suggestion generation.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: defaultModel}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Suggestions asks the model how a candidate could close the gap on the
// missing skills, returning short actionable bullet points.
func (c *Client) Suggestions(ctx context.Context, requirement string, missing []string) ([]string, error) {
	if len(missing) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		`A candidate document was matched against the following job requirement:

%s

The candidate is missing these required skills: %s.

Return a JSON array of at most 5 short suggestions (strings) for how the
candidate could credibly demonstrate or acquire the missing skills.
Return only the JSON array, no other text.`,
		requirement, strings.Join(missing, ", "),
	)

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions response: %w", err)
	}
	return suggestions, nil
}

// extractText pulls the text parts out of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response contains no text parts")
	}
	return sb.String(), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON
// responses. Models often wrap JSON in ```json ... ``` blocks even when
// instructed not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}
