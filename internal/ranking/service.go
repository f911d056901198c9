package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Entry is one row of a session's live ranking.
type Entry struct {
	StudentID string  `json:"student_id"`
	Score     int     `json:"score"`
	Accuracy  float64 `json:"accuracy"`
	Rank      int     `json:"rank"`
}

// ServiceOptions configures ranking behavior.
type ServiceOptions struct {
	TopN           int
	RedisKeyPrefix string
	EntryTTL       time.Duration
}

// Service keeps a per-session live ranking in Redis sorted sets so every
// student poll reads a precomputed order instead of re-sorting participants.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	topN   int
	prefix string
	ttl    time.Duration
}

func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "session:rank"
	}
	ttl := opts.EntryTTL
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}

	return &Service{
		redis:  redis,
		logger: logger.With().Str("component", "session_ranking").Logger(),
		topN:   topN,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Service) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

// Record writes a student's final score into the session's ranking.
func (s *Service) Record(ctx context.Context, sessionID, studentID string, score int) error {
	key := s.key(sessionID)

	pipe := s.redis.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: studentID})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record ranking: %w", err)
	}
	return nil
}

// Top returns the session's ranking, highest score first.
func (s *Service) Top(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	rows, err := s.redis.ZRevRangeWithScores(ctx, s.key(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			StudentID: member,
			Score:     int(row.Score),
			Rank:      i + 1,
		})
	}
	return entries, nil
}

// Clear drops a session's ranking once the session is removed.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, s.key(sessionID)).Err()
}
