package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"taxfree-engine/internal/models"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o"
)

// OpenAIClient streams answers from the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// NewOpenAIClient creates an OpenAI client. An empty model selects gpt-4o.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		model:   model,
		client:  streamingHTTPClient(),
	}
}

// WithBaseURL points the client at another endpoint.
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.baseURL = baseURL
	return c
}

// Name implements Provider.
func (c *OpenAIClient) Name() string { return "openai" }

// Configured implements Provider.
func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

// Stream implements Provider.
func (c *OpenAIClient) Stream(ctx context.Context, prompt Prompt, emit func(chunk string) error) error {
	if !c.Configured() {
		return ErrProviderNotConfigured
	}

	messages := make([]openAIMessage, 0, len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: prompt.System})
	}
	for _, m := range prompt.History {
		role := "user"
		if m.Role == models.ChatRoleAssistant {
			role = "assistant"
		}
		messages = append(messages, openAIMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt.Message})

	jsonBody, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    messages,
		Stream:      true,
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return readEvents(resp.Body, func(data string) (bool, error) {
		if data == "[DONE]" {
			return true, nil
		}
		var chunk openAIChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return false, fmt.Errorf("failed to decode chunk: %w", err)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return false, err
			}
		}
		return false, nil
	})
}
