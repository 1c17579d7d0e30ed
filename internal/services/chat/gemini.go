package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"taxfree-engine/internal/models"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiClient streams answers from the Gemini generateContent API.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  map[string]interface{} `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a Gemini client. An empty model selects gemini-2.0-flash.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		model:   model,
		client:  streamingHTTPClient(),
	}
}

// WithBaseURL points the client at another endpoint.
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = baseURL
	return c
}

// Name implements Provider.
func (c *GeminiClient) Name() string { return "gemini" }

// Configured implements Provider.
func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

// Stream implements Provider using streamGenerateContent with SSE framing.
func (c *GeminiClient) Stream(ctx context.Context, prompt Prompt, emit func(chunk string) error) error {
	if !c.Configured() {
		return ErrProviderNotConfigured
	}

	body := geminiRequest{
		Contents: geminiContents(prompt),
		GenerationConfig: map[string]interface{}{
			"temperature":     0.3,
			"maxOutputTokens": 2000,
		},
	}
	if prompt.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return readEvents(resp.Body, func(data string) (bool, error) {
		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return false, fmt.Errorf("failed to decode chunk: %w", err)
		}
		if len(chunk.Candidates) == 0 {
			return false, nil
		}
		for _, part := range chunk.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			if err := emit(part.Text); err != nil {
				return false, err
			}
		}
		return false, nil
	})
}

// geminiContents maps the history to Gemini roles; assistant turns become "model".
func geminiContents(prompt Prompt) []geminiContent {
	contents := make([]geminiContent, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		role := "user"
		if m.Role == models.ChatRoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	return append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt.Message}}})
}
