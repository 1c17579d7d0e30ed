package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/knowledge"
	"taxfree-engine/internal/utils"
)

// Service validates chat requests, grounds them in the diagnosis and the knowledge
// base and relays them to the configured provider.
type Service struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewService creates a chat service. A non-positive rate disables limiting.
func NewService(provider Provider, ratePerSec float64, burst int) *Service {
	limit := rate.Limit(ratePerSec)
	if ratePerSec <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Service{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Allow reports whether a new conversation turn may start now.
func (s *Service) Allow() bool {
	return s.limiter.Allow()
}

// Prepare validates the request and builds the prompt. Transports call it before
// committing to an event stream.
func (s *Service) Prepare(req *models.ChatRequest, result *models.DiagnosisResult) (Prompt, error) {
	if err := models.ValidateChatRequest(req); err != nil {
		return Prompt{}, err
	}
	if !s.provider.Configured() {
		return Prompt{}, ErrProviderNotConfigured
	}
	if !s.Allow() {
		return Prompt{}, ErrRateLimited
	}
	return BuildPrompt(*req, result, knowledge.FindRelevant(req.Message)), nil
}

// Stream relays a prepared prompt and passes every chunk to emit.
func (s *Service) Stream(ctx context.Context, prompt Prompt, emit func(chunk string) error) error {
	start := time.Now()
	chunks := 0

	err := s.provider.Stream(ctx, prompt, func(chunk string) error {
		chunks++
		return emit(chunk)
	})

	logger := utils.GetLogger()
	if err != nil {
		logger.Error("Chat stream failed",
			zap.String("provider", s.provider.Name()),
			zap.Int("chunks", chunks),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Chat stream completed",
		zap.String("provider", s.provider.Name()),
		zap.Int("history", len(prompt.History)),
		zap.Int("chunks", chunks),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Ask is Prepare followed by Stream.
func (s *Service) Ask(ctx context.Context, req *models.ChatRequest, result *models.DiagnosisResult, emit func(chunk string) error) error {
	prompt, err := s.Prepare(req, result)
	if err != nil {
		return err
	}
	return s.Stream(ctx, prompt, emit)
}
