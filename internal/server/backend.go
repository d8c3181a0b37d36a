package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Backend stores one JSON document per (table, id).
type Backend interface {
	Get(ctx context.Context, table, id string) (json.RawMessage, bool, error)
	Put(ctx context.Context, table, id string, data json.RawMessage) error
}

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	rows map[string]json.RawMessage
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[string]json.RawMessage)}
}

func (m *MemoryBackend) Get(_ context.Context, table, id string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.rows[rowKey(table, id)]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), data...), true, nil
}

func (m *MemoryBackend) Put(_ context.Context, table, id string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(table, id)] = append(json.RawMessage(nil), data...)
	return nil
}

// RedisBackend stores documents as plain string keys.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend connects to addr and verifies the connection with PING.
func NewRedisBackend(ctx context.Context, addr, password string) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisBackendFromClient(rdb), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (r *RedisBackend) Get(ctx context.Context, table, id string) (json.RawMessage, bool, error) {
	data, err := r.rdb.Get(ctx, rowKey(table, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return json.RawMessage(data), true, nil
}

func (r *RedisBackend) Put(ctx context.Context, table, id string, data json.RawMessage) error {
	if err := r.rdb.Set(ctx, rowKey(table, id), []byte(data), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}

func rowKey(table, id string) string {
	return "iqama:" + table + ":" + id
}
