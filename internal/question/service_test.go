package question

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type memoryCache struct {
	store map[string]BankResponse
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]BankResponse{}}
}

func (c *memoryCache) key(req BankRequest) string {
	codes := append([]string(nil), req.OACodes...)
	sort.Strings(codes)
	return strings.Join([]string{"mem", req.Subject, req.Difficulty, fmt.Sprint(req.Count), strings.Join(codes, "|")}, ":")
}

func (c *memoryCache) Get(_ context.Context, req BankRequest) (*BankResponse, error) {
	if val, ok := c.store[c.key(req)]; ok {
		return &val, nil
	}
	return nil, nil
}

func (c *memoryCache) Set(_ context.Context, req BankRequest, resp BankResponse) error {
	c.store[c.key(req)] = resp
	return nil
}

type stubGenerator struct {
	mu        sync.Mutex
	bank      []Question
	err       error
	generated int
	enqueued  int
}

func (s *stubGenerator) GenerateBank(_ context.Context, req BankRequest) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated++
	if s.err != nil {
		return nil, s.err
	}
	if req.Count < len(s.bank) {
		return s.bank[:req.Count], nil
	}
	return s.bank, nil
}

func (s *stubGenerator) EnqueueBank(context.Context, BankRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued++
	return nil
}

func (s *stubGenerator) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated, s.enqueued
}

func bankOf(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:            fmt.Sprintf("q-%d", i),
			Stem:          fmt.Sprintf("How many {item} are in the {place}? #%d", i),
			Type:          TypeMultipleChoice,
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: "4",
			Difficulty:    DifficultyEasy,
			BloomLevel:    BloomRemember,
			OACode:        "MA01OA01",
			Points:        10,
		}
	}
	return qs
}

func TestFetchBankUsesCache(t *testing.T) {
	cache := newMemoryCache()
	gen := &stubGenerator{bank: bankOf(3)}
	svc := NewService(cache, gen)

	req := BankRequest{OACodes: []string{"MA01OA01"}, Count: 3, Difficulty: DifficultyEasy, Subject: "math"}

	resp, err := svc.FetchBank(context.Background(), req)
	assert.NoError(t, err)
	assert.Len(t, resp.Questions, 3)

	_, err = svc.FetchBank(context.Background(), req)
	assert.NoError(t, err)

	generated, _ := gen.counts()
	assert.Equal(t, 1, generated, "second fetch should hit the cache")
	assert.Len(t, cache.store, 1)
}

func TestFetchBankRejectsShortBank(t *testing.T) {
	gen := &stubGenerator{bank: bankOf(2)}
	svc := NewService(newMemoryCache(), gen)

	_, err := svc.FetchBank(context.Background(), BankRequest{OACodes: []string{"MA01OA01"}, Count: 5})
	assert.ErrorContains(t, err, "insufficient questions")
}

func TestPrefetchWorkerEnqueuesOnFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("generator down")}
	svc := NewService(newMemoryCache(), gen)

	queue := make(chan BankRequest, 1)
	queue <- BankRequest{OACodes: []string{"MA01OA01"}, Count: 3}

	logger := zerolog.New(io.Discard)
	worker := NewPrefetchWorker(svc, gen, queue, logger, 10*time.Millisecond)

	go worker.Run()
	time.Sleep(30 * time.Millisecond)
	worker.Stop()

	_, enqueued := gen.counts()
	assert.Greater(t, enqueued, 0, "failed prefetch should enqueue async generation")
}

func TestNormalizeGeneratedAppendsMissingAnswer(t *testing.T) {
	q := normalizeGenerated(generatedQuestion{
		Stem:    "Count the {item}",
		Options: []string{"1", "2"},
		Answer:  "3",
	})

	assert.Contains(t, q.Options, "3")
	assert.Equal(t, TypeMultipleChoice, q.Type)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, 10, q.Points)
}
