package question

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientQuestions is returned when the generator produced fewer
// questions than the request asked for.
var ErrInsufficientQuestions = errors.New("insufficient questions")

// Service fronts the content generator with a cache so session creation never
// waits on the generator when a bank for the same OA codes already exists.
type Service struct {
	cache     BankCache
	generator ContentGenerator
}

func NewService(cache BankCache, generator ContentGenerator) *Service {
	return &Service{cache: cache, generator: generator}
}

// FetchBank returns a question bank for the request, preferring the cache.
func (s *Service) FetchBank(ctx context.Context, req BankRequest) (BankResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, req); err == nil && cached != nil {
			return *cached, nil
		}
	}

	if s.generator == nil {
		return BankResponse{}, fmt.Errorf("content generator unavailable")
	}

	questions, err := s.generator.GenerateBank(ctx, req)
	if err != nil {
		return BankResponse{}, fmt.Errorf("generate bank: %w", err)
	}
	if len(questions) < req.Count {
		return BankResponse{}, fmt.Errorf("%w: need %d got %d", ErrInsufficientQuestions, req.Count, len(questions))
	}
	questions = questions[:req.Count]

	resp := BankResponse{
		Questions: questions,
		ExpiresAt: time.Now().Add(defaultCacheTTL).Unix(),
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, req, resp)
	}
	return resp, nil
}
