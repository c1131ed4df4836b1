package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/assistance-service/internal/domain"
)

const locationKeyPrefix = "operator:location:"

// ErrLocationUnknown is returned when no recent heartbeat exists for an
// operator.
var ErrLocationUnknown = errors.New("operator location unknown")

// LocationCache keeps the last reported position of each operator in Redis
// with a TTL, so stale positions expire on their own.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocationCache builds a cache around the shared Redis client.
func NewLocationCache(r *Redis, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &LocationCache{client: client, ttl: ttl}
}

// Store records an operator heartbeat.
func (c *LocationCache) Store(ctx context.Context, operatorID string, loc domain.OperatorLocation) error {
	if c == nil || c.client == nil {
		return errors.New("location cache not configured")
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKeyPrefix+operatorID, payload, c.ttl).Err()
}

// Get returns the operator's last known location, or ErrLocationUnknown when
// none was reported within the TTL window.
func (c *LocationCache) Get(ctx context.Context, operatorID string) (*domain.OperatorLocation, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("location cache not configured")
	}
	payload, err := c.client.Get(ctx, locationKeyPrefix+operatorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLocationUnknown
		}
		return nil, err
	}
	var loc domain.OperatorLocation
	if err := json.Unmarshal(payload, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
