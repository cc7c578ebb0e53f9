package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// MemoryGuard is the single-process VerificationGuard used when Redis is not
// configured.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]struct{})}
}

func (g *MemoryGuard) Claim(_ context.Context, intentID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[intentID]; ok {
		return false, nil
	}
	g.seen[intentID] = struct{}{}
	return true, nil
}

// MemoryJournal keeps terminal checkout attempts in memory when MongoDB is
// not configured.
type MemoryJournal struct {
	mu       sync.Mutex
	attempts map[string]domain.CheckoutAttempt
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{attempts: make(map[string]domain.CheckoutAttempt)}
}

func (j *MemoryJournal) Record(_ context.Context, a *domain.CheckoutAttempt) error {
	cp := *a
	cp.Items = append([]domain.OrderItem(nil), a.Items...)
	if a.Intent != nil {
		intent := *a.Intent
		cp.Intent = &intent
	}
	j.mu.Lock()
	j.attempts[a.ID] = cp
	j.mu.Unlock()
	return nil
}

// ListByUser returns a user's attempts, newest first. A limit of 0 returns all.
func (j *MemoryJournal) ListByUser(_ context.Context, userID int64, limit int64) ([]domain.CheckoutAttempt, error) {
	j.mu.Lock()
	out := make([]domain.CheckoutAttempt, 0, len(j.attempts))
	for _, a := range j.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	j.mu.Unlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
