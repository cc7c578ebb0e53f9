package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pulsepr/storefront/internal/core/ports"
)

// SessionStore keeps the session keys in Redis so several storefront
// processes can share one signed-in user. Keys are namespaced by profile.
// Key format: session:<profile>:<storage_key>
type SessionStore struct {
	client  *redis.Client
	profile string
}

// NewSessionStore creates a SessionStore for the given profile.
func NewSessionStore(client *redis.Client, profile string) *SessionStore {
	if profile == "" {
		profile = "default"
	}
	return &SessionStore{client: client, profile: profile}
}

func (s *SessionStore) Load(ctx context.Context) (ports.StoredSession, error) {
	vals, err := s.client.MGet(ctx, s.key(ports.TokenKey), s.key(ports.UserKey)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ports.StoredSession{}, fmt.Errorf("load session: %w", err)
	}
	var out ports.StoredSession
	if len(vals) == 2 {
		out.Token, _ = vals[0].(string)
		out.User, _ = vals[1].(string)
	}
	return out, nil
}

// Save writes both keys in one transaction.
func (s *SessionStore) Save(ctx context.Context, sess ports.StoredSession) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(ports.TokenKey), sess.Token, 0)
		p.Set(ctx, s.key(ports.UserKey), sess.User, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(ports.TokenKey), s.key(ports.UserKey)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(name string) string {
	return fmt.Sprintf("session:%s:%s", s.profile, name)
}
