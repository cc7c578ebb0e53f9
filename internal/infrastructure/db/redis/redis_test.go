package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsepr/storefront/internal/core/ports"
)

// setupTestRedis starts a miniredis server and a client pointing at it.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestVerificationGuard_ClaimsOnce(t *testing.T) {
	client, mr := setupTestRedis(t)
	g := NewVerificationGuard(client)
	ctx := context.Background()

	first, err := g.Claim(ctx, "order_1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := g.Claim(ctx, "order_1")
	require.NoError(t, err)
	assert.False(t, second)

	other, err := g.Claim(ctx, "order_2")
	require.NoError(t, err)
	assert.True(t, other)

	assert.True(t, mr.Exists("verify:order_1"))
	assert.Equal(t, guardTTL, mr.TTL("verify:order_1"))
}

func TestVerificationGuard_ClaimExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	g := NewVerificationGuard(client)
	ctx := context.Background()

	_, err := g.Claim(ctx, "order_1")
	require.NoError(t, err)
	mr.FastForward(guardTTL + time.Second)

	again, err := g.Claim(ctx, "order_1")
	require.NoError(t, err)
	assert.True(t, again)
}

func TestVerificationGuard_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	_, err := NewVerificationGuard(client).Claim(context.Background(), "order_1")
	assert.Error(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewSessionStore(client, "")
	ctx := context.Background()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.StoredSession{}, empty)

	want := ports.StoredSession{Token: "jwt", User: `{"id":1}`}
	require.NoError(t, s.Save(ctx, want))
	assert.True(t, mr.Exists("session:default:pulsepr_token"))
	assert.True(t, mr.Exists("session:default:pulsepr_user"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("session:default:pulsepr_token"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.StoredSession{}, got)
}

func TestSessionStore_PartialKeys(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewSessionStore(client, "kiosk")
	require.NoError(t, mr.Set("session:kiosk:pulsepr_token", "jwt"))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt", got.Token)
	assert.Empty(t, got.User)
}

func TestSessionStore_ProfilesAreIsolated(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, NewSessionStore(client, "a").Save(ctx, ports.StoredSession{Token: "ta", User: "ua"}))
	got, err := NewSessionStore(client, "b").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.StoredSession{}, got)
}
