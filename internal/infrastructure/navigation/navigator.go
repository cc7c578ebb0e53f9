// Package navigation tracks the active view of the storefront UI.
package navigation

import (
	"sync"

	"github.com/rs/zerolog"
)

const maxHistory = 50

// Navigator is an in-memory ports.Navigator. The console exposes the current
// view so the page can follow redirects issued by the orchestrators.
type Navigator struct {
	mu      sync.RWMutex
	current string
	history []string
	log     zerolog.Logger
}

// New starts at the given view.
func New(start string, log zerolog.Logger) *Navigator {
	return &Navigator{current: start, log: log}
}

func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Navigate moves to view and records it. Navigating to the current view is a no-op.
func (n *Navigator) Navigate(view string) {
	n.mu.Lock()
	if view == n.current {
		n.mu.Unlock()
		return
	}
	from := n.current
	n.current = view
	n.history = append(n.history, view)
	if len(n.history) > maxHistory {
		n.history = n.history[len(n.history)-maxHistory:]
	}
	n.mu.Unlock()

	n.log.Debug().Str("from", from).Str("to", view).Msg("navigate")
}

// History returns the views visited, oldest first.
func (n *Navigator) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.history...)
}
