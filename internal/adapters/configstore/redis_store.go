package configstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	redisclient "github.com/boicualexandru/scraping-calendis/internal/infrastructure/clients/redis"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

const (
	sessionKey = "client_session"
	enabledKey = "scraping_enabled"
)

var (
	_ providers.ConfigStore = (*RedisStore)(nil)
	_ providers.StateLoader = (*RedisStore)(nil)
)

// RedisStore persists the session token and the enable flag in Redis
type RedisStore struct {
	client *redisclient.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed config store
func NewRedisStore(client *redisclient.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefix}
}

// SetSessionToken persists a renewed session token
func (s *RedisStore) SetSessionToken(ctx context.Context, session entities.Session) error {
	if err := s.client.Client().Set(ctx, s.prefix+sessionKey, session.Value(), 0).Err(); err != nil {
		return apperrors.NewConfigStoreError("failed to persist session token", err)
	}
	return nil
}

// SetEnabled stores the flag as "1" or "0"
func (s *RedisStore) SetEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	if err := s.client.Client().Set(ctx, s.prefix+enabledKey, value, 0).Err(); err != nil {
		return apperrors.NewConfigStoreError("failed to persist scraping flag", err)
	}
	return nil
}

// LoadState reads back whatever was persisted by earlier runs
func (s *RedisStore) LoadState(ctx context.Context) (providers.StoredState, error) {
	var state providers.StoredState

	values, err := s.client.Client().MGet(ctx, s.prefix+sessionKey, s.prefix+enabledKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return state, apperrors.NewConfigStoreError("failed to load persisted state", err)
	}

	if len(values) == 2 {
		if token, ok := values[0].(string); ok && token != "" {
			session := entities.Session(token)
			state.SessionToken = &session
		}
		if flag, ok := values[1].(string); ok {
			enabled := flag == "1"
			state.Enabled = &enabled
		}
	}

	return state, nil
}
