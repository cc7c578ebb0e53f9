// Package notify collects transient notifications for the UI to display.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/ports"
)

const defaultCapacity = 100

// Notification is one toast.
type Notification struct {
	ID        uint64      `json:"id"`
	Level     ports.Level `json:"level"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Center is a bounded buffer of notifications. Old entries are dropped once
// capacity is reached.
type Center struct {
	mu     sync.Mutex
	items  []Notification
	nextID uint64
	cap    int
	log    zerolog.Logger
	now    func() time.Time
}

func NewCenter(capacity int, log zerolog.Logger) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Center{cap: capacity, log: log, now: time.Now}
}

// Notify implements ports.Notifier.
func (c *Center) Notify(level ports.Level, message string) {
	c.mu.Lock()
	c.nextID++
	c.items = append(c.items, Notification{ID: c.nextID, Level: level, Message: message, CreatedAt: c.now().UTC()})
	if len(c.items) > c.cap {
		c.items = c.items[len(c.items)-c.cap:]
	}
	c.mu.Unlock()

	c.log.Info().Str("level", string(level)).Msg(message)
}

// Since returns notifications with an id greater than after, oldest first.
func (c *Center) Since(after uint64) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0)
	for _, n := range c.items {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}

// Drain returns and removes every buffered notification.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
