// Package gemini adapts Google's Gemini models to the conversational agent
// contract used by the chat service.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/integrations/paramstore"
)

// Client calls Gemini in JSON mode. Gemini has no moderation endpoint, so
// Moderate never flags.
type Client struct {
	client *genai.Client
}

// New creates a Client authenticated with apiKey.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client}, nil
}

// NewFromParamStore reads the {"token": ...} payload stored under name and
// creates a Client with it.
func NewFromParamStore(ctx context.Context, getter paramstore.Getter, name string) (*Client, error) {
	key, err := paramstore.GetToken(ctx, getter, name)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return New(ctx, key)
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Chat sends messages to model and returns the concatenated text of the first
// candidate.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	if model == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	system, history, last, err := splitMessages(messages)
	if err != nil {
		return "", err
	}

	m := c.client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := m.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return responseText(resp)
}

func (c *Client) Moderate(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// splitMessages folds system messages into one instruction, maps the rest to
// chat history and returns the final user turn separately.
func splitMessages(messages []domain.ChatMessage) (string, []*genai.Content, string, error) {
	var system []string
	var turns []domain.ChatMessage
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return "", nil, "", errors.New("gemini: last message must be a user message")
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return strings.Join(system, "\n\n"), history, turns[len(turns)-1].Content, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no response candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: empty response text")
	}
	return b.String(), nil
}
