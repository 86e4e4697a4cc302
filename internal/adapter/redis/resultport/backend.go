package resultport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

var _ secondary.KeyValueBackend = (*RedisBackend)(nil)

// RedisBackend implements the KeyValueBackend interface with Redis. The live
// result set lives in a single hash scoped to this process session; a local
// snapshot file provides durability across sessions and is restored into the
// hash at construction time. Concurrency control is delegated to the Redis
// client, which is safe for concurrent use.
type RedisBackend struct {
	client    *redis.Client
	logger    primary.Logger
	sessionID string
	filePath  string
}

// NewRedisBackend verifies the connection and restores an existing snapshot
// file into the session hash when one is present. An unreachable server is a
// connection error the caller should treat as unrecoverable.
func NewRedisBackend(ctx context.Context, client *redis.Client, name string, filePath string, logger primary.Logger) (*RedisBackend, error) {
	b := &RedisBackend{
		client:    client,
		logger:    logger,
		sessionID: fmt.Sprintf("%s-%s", name, uuid.NewString()),
		filePath:  filePath,
	}

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis database", "error", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrBackendConnection, err)
	}

	if err := b.restore(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// restore seeds the session hash from the snapshot file, if any.
func (b *RedisBackend) restore(ctx context.Context) error {
	raw, err := os.ReadFile(b.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read the database snapshot: %w", err)
	}

	var dump map[string][]byte
	if err := json.Unmarshal(raw, &dump); err != nil {
		return fmt.Errorf("failed to decode the database snapshot: %w", err)
	}
	if len(dump) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(dump))
	for key, value := range dump {
		fields[key] = value
	}
	if err := b.client.HSet(ctx, b.sessionID, fields).Err(); err != nil {
		return fmt.Errorf("failed to restore the database snapshot: %w", err)
	}

	b.logger.Info("Restored data from an existing database snapshot",
		"count", len(dump), "file", b.filePath)
	return nil
}

// GetAll retrieves the full session hash.
func (b *RedisBackend) GetAll(ctx context.Context) (map[string][]byte, error) {
	fields, err := b.client.HGetAll(ctx, b.sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to dump the database: %w", err)
	}

	dump := make(map[string][]byte, len(fields))
	for key, value := range fields {
		dump[key] = []byte(value)
	}
	return dump, nil
}

// Get returns the value stored under key, or nil if the key is absent.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.HGet(ctx, b.sessionID, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return raw, nil
}

// BatchGet retrieves all values in one HMGET round trip.
func (b *RedisBackend) BatchGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := b.client.HMGet(ctx, b.sessionID, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to batch get: %w", err)
	}

	raws := make([][]byte, len(keys))
	for i, value := range values {
		if value == nil {
			continue
		}
		raws[i] = []byte(value.(string))
	}
	return raws, nil
}

// Set upserts a single value and snapshots the hash, so every committed
// result is durable even if the session ends abnormally.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.HSet(ctx, b.sessionID, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return b.Flush(ctx)
}

// BatchSet upserts all pairs in one HSET and snapshots the hash.
func (b *RedisBackend) BatchSet(ctx context.Context, pairs map[string][]byte) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	fields := make(map[string]interface{}, len(pairs))
	for key, value := range pairs {
		fields[key] = value
	}
	if err := b.client.HSet(ctx, b.sessionID, fields).Err(); err != nil {
		return 0, fmt.Errorf("failed to batch set: %w", err)
	}

	if err := b.Flush(ctx); err != nil {
		return 0, err
	}
	return len(pairs), nil
}

// Keys returns all keys in the session hash.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.client.HKeys(ctx, b.sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Count returns the number of keys in the session hash.
func (b *RedisBackend) Count(ctx context.Context) (int, error) {
	count, err := b.client.HLen(ctx, b.sessionID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return int(count), nil
}

// Flush serializes the full session hash to the snapshot file.
func (b *RedisBackend) Flush(ctx context.Context) error {
	dump, err := b.GetAll(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(dump)
	if err != nil {
		return fmt.Errorf("failed to encode the database snapshot: %w", err)
	}
	if err := os.WriteFile(b.filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write the database snapshot: %w", err)
	}
	return nil
}

// Close deletes the session hash; the snapshot file keeps the durable copy.
func (b *RedisBackend) Close(ctx context.Context) error {
	if err := b.client.Del(ctx, b.sessionID).Err(); err != nil {
		b.logger.Warn("Failed to delete the session hash", "session", b.sessionID, "error", err)
		return err
	}
	return nil
}

// SessionID returns the Redis hash key used by this process session.
func (b *RedisBackend) SessionID() string {
	return b.sessionID
}
