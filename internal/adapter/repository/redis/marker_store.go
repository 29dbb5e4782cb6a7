package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// Markers are hashes with fields state, attempts, created_at and updated_at.
// Timestamps are unix milliseconds so Lua can compare them as numbers.

var insertMarkerScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'state', 'pending', 'attempts', 1, 'created_at', ARGV[1], 'updated_at', ARGV[1])
return 1
`)

var reclaimMarkerScript = redis.NewScript(`
local state = redis.call('HGET', KEYS[1], 'state')
if not state then
  return 0
end
local updated = tonumber(redis.call('HGET', KEYS[1], 'updated_at'))
if state == 'rejected' or (state == 'pending' and updated <= tonumber(ARGV[2])) then
  redis.call('HSET', KEYS[1], 'state', 'pending', 'updated_at', ARGV[1])
  redis.call('HINCRBY', KEYS[1], 'attempts', 1)
  redis.call('PERSIST', KEYS[1])
  return 1
end
return 0
`)

var finalizeMarkerScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'state') ~= 'pending' then
  return 0
end
redis.call('HSET', KEYS[1], 'state', ARGV[1], 'updated_at', ARGV[2])
local ttl = tonumber(ARGV[3])
if ARGV[1] == 'applied' and ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
end
return 1
`)

// MarkerStore implements usecase.MarkerStore on Redis. Applied markers expire
// after the retention period.
type MarkerStore struct {
	client    *redis.Client
	metrics   *metrics.Metrics
	prefix    string
	retention time.Duration
}

// NewMarkerStore creates a new MarkerStore. A zero retention keeps applied
// markers until DeleteAppliedBefore removes them. m may be nil.
func NewMarkerStore(client *redis.Client, retention time.Duration, m *metrics.Metrics) *MarkerStore {
	return &MarkerStore{
		client:    client,
		metrics:   m,
		prefix:    "marker:",
		retention: retention,
	}
}

func (s *MarkerStore) key(k domain.MarkerKey) string {
	return s.prefix + k.Source + ":" + k.CorrelationID
}

// Insert registers a pending marker unless one exists.
func (s *MarkerStore) Insert(ctx context.Context, key domain.MarkerKey, now time.Time) (bool, error) {
	n, err := insertMarkerScript.Run(ctx, s.client, []string{s.key(key)}, now.UnixMilli()).Int()
	observe(s.metrics, "marker_insert", err)
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

// Get retrieves the marker for key.
func (s *MarkerStore) Get(ctx context.Context, key domain.MarkerKey) (*domain.Marker, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	observe(s.metrics, "marker_get", err)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, domain.ErrMarkerNotFound
	}

	return parseMarker(key, fields)
}

// Reclaim moves a rejected or lease-expired marker back to pending. The Lua
// compare-and-set lets exactly one concurrent caller win.
func (s *MarkerStore) Reclaim(ctx context.Context, key domain.MarkerKey, lease time.Duration, now time.Time) (bool, error) {
	n, err := reclaimMarkerScript.Run(ctx, s.client, []string{s.key(key)},
		now.UnixMilli(), now.Add(-lease).UnixMilli()).Int()
	observe(s.metrics, "marker_reclaim", err)
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

// Finalize moves a pending marker to its terminal state. A marker that is
// missing or already final yields domain.ErrMarkerNotFound.
func (s *MarkerStore) Finalize(ctx context.Context, key domain.MarkerKey, state domain.MarkerState, now time.Time) error {
	n, err := finalizeMarkerScript.Run(ctx, s.client, []string{s.key(key)},
		string(state), now.UnixMilli(), s.retention.Milliseconds()).Int()
	observe(s.metrics, "marker_finalize", err)
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrMarkerNotFound
	}

	return nil
}

// DeleteAppliedBefore scans for applied markers last updated before before
// and deletes them.
func (s *MarkerStore) DeleteAppliedBefore(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.UnixMilli()
	var deleted int64

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()

		vals, err := s.client.HMGet(ctx, k, "state", "updated_at").Result()
		if err != nil {
			observe(s.metrics, "marker_cleanup", err)
			return deleted, err
		}

		state, _ := vals[0].(string)
		updated, _ := vals[1].(string)
		if state != string(domain.MarkerApplied) {
			continue
		}

		ms, err := strconv.ParseInt(updated, 10, 64)
		if err != nil || ms >= cutoff {
			continue
		}

		n, err := s.client.Del(ctx, k).Result()
		if err != nil {
			observe(s.metrics, "marker_cleanup", err)
			return deleted, err
		}
		deleted += n
	}

	err := iter.Err()
	observe(s.metrics, "marker_cleanup", err)
	return deleted, err
}

func parseMarker(key domain.MarkerKey, fields map[string]string) (*domain.Marker, error) {
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("marker %s: bad attempts: %w", key, err)
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("marker %s: bad created_at: %w", key, err)
	}

	updatedAt, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("marker %s: bad updated_at: %w", key, err)
	}

	return &domain.Marker{
		Key:       key,
		State:     domain.MarkerState(fields["state"]),
		Attempts:  attempts,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}, nil
}
