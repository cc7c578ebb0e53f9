package domain

import "time"

// Role is the authorization level the backend attaches to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the cached profile of the logged-in account.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the authenticated identity of the current user. The zero value
// is the anonymous session.
type Session struct {
	Token string
	User  *User
	// ExpiresAt is decoded from the token without verification; zero when the
	// token carries no exp claim.
	ExpiresAt time.Time
}

// IsAuthenticated reports whether a credential is present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.Role == RoleAdmin
}

// UserRecord is an entry of the admin users listing.
type UserRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionState is the lifecycle of the session store.
type SessionState string

const (
	SessionUnknown       SessionState = "unknown"
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
)
