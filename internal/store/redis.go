package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/aura-webinar/keygate/internal/models"
)

const (
	// RedisKeyIndex maps registrant keys to row ids.
	RedisKeyIndex = "registrant:keys"
	// redisRecordPrefix prefixes the hash holding one record.
	redisRecordPrefix = "registrant:"
)

// RedisStore keeps each record in a hash and resolves keys through an index hash.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// RecordKey returns the hash key of a row.
func RecordKey(row int) string {
	return redisRecordPrefix + strconv.Itoa(row)
}

// FindByKey resolves key through the index hash.
func (s *RedisStore) FindByKey(ctx context.Context, key string) (int, error) {
	v, err := s.client.HGet(ctx, RedisKeyIndex, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("hget index: %w", err)
	}
	row, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("index entry for %q: %w", key, err)
	}
	return row, nil
}

// Read loads the record hash of row.
func (s *RedisStore) Read(ctx context.Context, row int) (*models.RegistrantRecord, error) {
	h, err := s.client.HGetAll(ctx, RecordKey(row)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall row %d: %w", row, err)
	}
	if len(h) == 0 {
		return nil, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	return &models.RegistrantRecord{
		Row:            row,
		Key:            h["key"],
		Name:           h["name"],
		Status:         models.RegistrantStatus(h[FieldStatus]),
		Data:           h[FieldData],
		ExternalID:     h[FieldExternalID],
		ExpectedTimeID: h["time_id"],
	}, nil
}

// Write sets one hash field per field present in u.
func (s *RedisStore) Write(ctx context.Context, row int, u models.RecordUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	for _, f := range updateFields(u) {
		if err := s.client.HSet(ctx, RecordKey(row), f.name, f.value).Err(); err != nil {
			return fmt.Errorf("write %s at row %d: %w", f.name, row, err)
		}
	}
	return nil
}
