package question

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// BankCache defines cache behavior (implemented by the Redis-backed Cache).
type BankCache interface {
	Get(ctx context.Context, req BankRequest) (*BankResponse, error)
	Set(ctx context.Context, req BankRequest, resp BankResponse) error
}

// Cache provides Redis-backed bank caching so repeated evaluations for the
// same OA codes reuse generated questions instead of re-calling the service.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ BankCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(req BankRequest) string {
	codes := append([]string(nil), req.OACodes...)
	sort.Strings(codes)
	return strings.Join([]string{
		"questionbank",
		req.Subject,
		req.Difficulty,
		fmt.Sprint(req.Count),
		strings.Join(codes, "|"),
	}, ":")
}

func (c *Cache) Get(ctx context.Context, req BankRequest) (*BankResponse, error) {
	data, err := c.client.Get(ctx, c.key(req)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var resp BankResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Cache) Set(ctx context.Context, req BankRequest, resp BankResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(req), data, c.ttl).Err()
}
