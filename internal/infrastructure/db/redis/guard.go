package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// VerificationGuard claims payment intents in Redis so a confirmation is
// forwarded to the backend at most once, even across processes.
// Key format: verify:<intent_id>
type VerificationGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerificationGuard creates a guard wrapping the given Redis client.
func NewVerificationGuard(client *redis.Client) *VerificationGuard {
	return &VerificationGuard{client: client, ttl: guardTTL}
}

// Claim reports true the first time intentID is seen. The claim expires
// after guardTTL.
func (g *VerificationGuard) Claim(ctx context.Context, intentID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(intentID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("verification claim: %w", err)
	}
	if !ok {
		return false, nil
	}
	return true, nil
}

func (g *VerificationGuard) key(intentID string) string {
	return "verify:" + intentID
}
