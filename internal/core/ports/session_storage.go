package ports

import "context"

// Persisted storage keys. Both are written together and cleared together.
const (
	TokenKey = "pulsepr_token"
	UserKey  = "pulsepr_user"
)

// StoredSession is the raw persisted form of a session: the token and the
// serialized user profile, exactly as written.
type StoredSession struct {
	Token string
	User  string
}

// SessionStorage is the durable client-side store for the session.
type SessionStorage interface {
	// Load returns whatever is persisted; missing keys come back empty.
	Load(ctx context.Context) (StoredSession, error)
	// Save writes both keys.
	Save(ctx context.Context, s StoredSession) error
	// Clear removes both keys.
	Clear(ctx context.Context) error
}
