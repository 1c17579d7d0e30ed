// Package chat relays tax questions to an external LLM and streams the answer back.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/models"
)

// Errors returned by the relay.
var (
	ErrProviderNotConfigured = errors.New("AI 서비스가 설정되지 않았습니다. API 키 환경변수를 설정해주세요")
	ErrRateLimited           = errors.New("too many chat requests")
)

// Prompt is everything a provider needs to answer one question.
type Prompt struct {
	System  string
	History []models.ChatMessage
	Message string
}

// Provider streams an answer chunk by chunk. Stream returns once the model is done,
// the context is cancelled, or emit returns an error.
type Provider interface {
	Name() string
	Configured() bool
	Stream(ctx context.Context, prompt Prompt, emit func(chunk string) error) error
}

// NewProvider creates the provider selected in the config.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.ChatProvider {
	case config.ChatProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ChatModel), nil
	case config.ChatProviderGemini, "":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.ChatModel), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}
}

// streamingHTTPClient has no overall timeout; streams are bounded by the request context.
func streamingHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// readEvents calls onData with the payload of every "data:" line of an SSE body
// until it reports done or the body ends.
func readEvents(body io.Reader, onData func(data string) (done bool, err error)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		done, err := onData(data)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

// statusError reads a short excerpt of a failed response for the error message.
func statusError(resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
}
