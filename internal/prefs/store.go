// Package prefs is the operator preference store: selection-mode default,
// time-step granularity, fare-simulator scratch totals keyed by month. It is
// a cache, never authoritative: absent, stale or malformed values fall back
// to defaults without error.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/utils"
)

const (
	KeySelectionMode = "selection_mode"
	KeyTimeStep      = "time_step"
)

// FareScratchKey builds the per-month fare-simulator scratch key.
func FareScratchKey(month string) string {
	return "fare_scratch:" + month
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(addr, password string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    90 * 24 * time.Hour,
	}
}

// NewStoreWithClient is used by tests (miniredis).
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client, ttl: 90 * 24 * time.Hour}
}

// Get decodes the stored value into dst and reports whether a usable value
// was found. Any failure (connection, missing key, malformed JSON) is a soft
// miss: the caller keeps its default.
func (s *Store) Get(ctx context.Context, operatorID int64, key string, dst any) bool {
	raw, err := s.client.Get(ctx, prefKey(operatorID, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.LogEvent("", "prefs", "get_miss", fmt.Sprintf("key=%s err=%v", key, err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		utils.LogEvent("", "prefs", "malformed_value", fmt.Sprintf("key=%s err=%v", key, err))
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, operatorID int64, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, prefKey(operatorID, key), raw, s.ttl).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func prefKey(operatorID int64, key string) string {
	return fmt.Sprintf("prefs:%d:%s", operatorID, key)
}
