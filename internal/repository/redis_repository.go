package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

const lastRunKey = "reminder:run:latest"

func claimKey(loanID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("reminder:claim:%s:%s", loanID, utils.FormatDate(day))
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker claims loans with SET NX so that separate processes
// running the job for the same day cannot both send
func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Claim(ctx context.Context, loanID uuid.UUID, day time.Time) (bool, error) {
	return l.client.SetNX(ctx, claimKey(loanID, day), time.Now().Unix(), l.ttl).Result()
}

func (l *redisLocker) Release(ctx context.Context, loanID uuid.UUID, day time.Time) error {
	return l.client.Del(ctx, claimKey(loanID, day)).Err()
}

type memoryLocker struct {
	mu     sync.Mutex
	claims map[string]time.Time
}

// NewMemoryLocker serializes loans within a single process. Claims for
// days before the one being claimed are dropped.
func NewMemoryLocker() Locker {
	return &memoryLocker{claims: make(map[string]time.Time)}
}

func (l *memoryLocker) Claim(_ context.Context, loanID uuid.UUID, day time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day = utils.CivilDate(day)
	for key, claimedFor := range l.claims {
		if claimedFor.Before(day) {
			delete(l.claims, key)
		}
	}

	key := claimKey(loanID, day)
	if _, taken := l.claims[key]; taken {
		return false, nil
	}
	l.claims[key] = day
	return true, nil
}

func (l *memoryLocker) Release(_ context.Context, loanID uuid.UUID, day time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.claims, claimKey(loanID, day))
	return nil
}

type runSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunSummaryCache(client *redis.Client, ttl time.Duration) RunSummaryCache {
	return &runSummaryCache{client: client, ttl: ttl}
}

func (c *runSummaryCache) Save(ctx context.Context, summary *domain.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lastRunKey, payload, c.ttl).Err()
}

// Latest returns nil, nil when no run has been recorded
func (c *runSummaryCache) Latest(ctx context.Context) (*domain.RunSummary, error) {
	payload, err := c.client.Get(ctx, lastRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary domain.RunSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

type memoryRunSummaryCache struct {
	mu     sync.RWMutex
	latest *domain.RunSummary
}

// NewMemoryRunSummaryCache keeps the latest summary for this process only
func NewMemoryRunSummaryCache() RunSummaryCache {
	return &memoryRunSummaryCache{}
}

func (c *memoryRunSummaryCache) Save(_ context.Context, summary *domain.RunSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = summary
	return nil
}

func (c *memoryRunSummaryCache) Latest(_ context.Context) (*domain.RunSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, nil
}
