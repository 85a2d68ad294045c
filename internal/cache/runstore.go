package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"pricelist/internal/model"
)

const (
	keyPrefix  = "pricelist:run:"
	DefaultTTL = 30 * time.Minute
)

// kv is the subset of redis commands RunStore uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RunStore keeps the comparison results of an upload run so later uploads
// with the same run id merge into them.
type RunStore struct {
	client kv
	ttl    time.Duration
}

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func NewRunStore(client kv, ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RunStore{client: client, ttl: ttl}
}

func (s *RunStore) Save(ctx context.Context, runID string, results []model.ComparisonResult) error {
	b, err := json.Marshal(results)
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := s.client.Set(ctx, keyPrefix+runID, b, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "save run %s", runID)
	}
	return nil
}

// Load returns nil without error for an unknown or expired run.
func (s *RunStore) Load(ctx context.Context, runID string) ([]model.ComparisonResult, error) {
	val, err := s.client.Get(ctx, keyPrefix+runID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	var results []model.ComparisonResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", runID)
	}
	return results, nil
}
