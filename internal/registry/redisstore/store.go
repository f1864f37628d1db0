// Package redisstore backs the installation registry with Redis. Redis
// gives atomic per-key set/delete, which is all the replace semantics need.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gaming-notification-service/internal/registry"
)

const keyPrefix = "installation:"

// Store wraps the Redis client behind the registry.Store interface.
type Store struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(host, port, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Replace(ctx context.Context, installation registry.Installation) error {
	data, err := json.Marshal(installation)
	if err != nil {
		return fmt.Errorf("failed to marshal installation: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+installation.DeviceToken, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store installation: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, deviceToken string) (registry.Installation, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+deviceToken).Bytes()
	if errors.Is(err, redis.Nil) {
		return registry.Installation{}, false, nil
	}
	if err != nil {
		return registry.Installation{}, false, fmt.Errorf("failed to read installation: %w", err)
	}

	var installation registry.Installation
	if err := json.Unmarshal(data, &installation); err != nil {
		return registry.Installation{}, false, fmt.Errorf("failed to unmarshal installation: %w", err)
	}
	return installation, true, nil
}

func (s *Store) Delete(ctx context.Context, deviceToken string) error {
	if err := s.client.Del(ctx, keyPrefix+deviceToken).Err(); err != nil {
		return fmt.Errorf("failed to delete installation: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
