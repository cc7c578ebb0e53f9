package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/core/validate"
)

// RegisterForm is the sign-up form. Confirm is checked only when supplied.
type RegisterForm struct {
	Name     string      `json:"name" validate:"notblank"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Confirm  string      `json:"confirm,omitempty" validate:"omitempty,eqfield=Password"`
	Role     domain.Role `json:"role,omitempty"`
}

type loginForm struct {
	Email    string `validate:"notblank"`
	Password string `validate:"required"`
}

// SessionService owns the authenticated identity. It is the single writer of
// the persisted token and user; every other component reads through it.
type SessionService struct {
	api      ports.AuthAPI
	storage  ports.SessionStorage
	notifier ports.Notifier
	log      zerolog.Logger

	mu        sync.RWMutex
	state     domain.SessionState
	session   domain.Session
	observers map[int]func(domain.Session)
	nextObs   int
}

func NewSessionService(api ports.AuthAPI, storage ports.SessionStorage, notifier ports.Notifier, log zerolog.Logger) *SessionService {
	return &SessionService{
		api:       api,
		storage:   storage,
		notifier:  notifier,
		log:       log,
		state:     domain.SessionUnknown,
		observers: make(map[int]func(domain.Session)),
	}
}

// Subscribe registers fn to be called after every state change. The returned
// func removes the subscription.
func (s *SessionService) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Restore loads the persisted session. Partial or corrupt data clears both
// keys and leaves the store anonymous; Restore never fails.
func (s *SessionService) Restore(ctx context.Context) {
	stored, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session storage unreadable, starting anonymous")
		s.discard(ctx)
		return
	}
	if stored.Token == "" && stored.User == "" {
		s.set(domain.Session{})
		return
	}

	user, err := decodeUser(stored.User)
	if stored.Token == "" || err != nil {
		s.log.Warn().Err(err).Bool("has_token", stored.Token != "").Msg("discarding partial session")
		s.discard(ctx)
		return
	}

	sess := domain.Session{Token: stored.Token, User: user, ExpiresAt: tokenExpiry(stored.Token)}
	ev := s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role))
	if !sess.ExpiresAt.IsZero() {
		ev = ev.Time("expires_at", sess.ExpiresAt)
		if sess.ExpiresAt.Before(time.Now()) {
			ev = ev.Bool("expired", true)
		}
	}
	ev.Msg("session restored")
	s.set(sess)
}

// Login exchanges credentials for a token. Both keys are persisted before the
// new session is published.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(loginForm{Email: email, Password: password}); err != nil {
		return nil, domain.NewValidationError("Please fill all fields")
	}

	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		var he *domain.HTTPError
		if errors.As(err, &he) {
			return nil, &domain.AuthenticationError{Msg: domain.UserMessage(err, "Login failed"), Err: err}
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if token == "" || user == nil {
		return nil, &domain.AuthenticationError{Msg: "Login failed"}
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Save(ctx, ports.StoredSession{Token: token, User: string(raw)}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.set(domain.Session{Token: token, User: user, ExpiresAt: tokenExpiry(token)})
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("logged in")
	u := *user
	return &u, nil
}

// Register creates an account. It does not log in.
func (s *SessionService) Register(ctx context.Context, form RegisterForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := validate.Struct(form); err != nil {
		return err
	}
	if form.Role == "" {
		form.Role = domain.RoleUser
	}
	if !form.Role.Valid() {
		return domain.NewValidationError("role must be USER or ADMIN")
	}

	err := s.api.Register(ctx, ports.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		var he *domain.HTTPError
		if errors.As(err, &he) {
			return &domain.ValidationError{Msg: domain.UserMessage(err, "Registration failed")}
		}
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// RegisterAndLogin registers and then signs in with the same credentials.
func (s *SessionService) RegisterAndLogin(ctx context.Context, form RegisterForm) (*domain.User, error) {
	if err := s.Register(ctx, form); err != nil {
		return nil, err
	}
	return s.Login(ctx, form.Email, form.Password)
}

// Logout is local only: no backend call.
func (s *SessionService) Logout(ctx context.Context) {
	s.discard(ctx)
	if s.notifier != nil {
		s.notifier.Notify(ports.LevelSuccess, "Logged out successfully")
	}
}

// Invalidate drops the session after the backend refused the credential.
func (s *SessionService) Invalidate(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	s.log.Info().Msg("credential rejected by backend, session dropped")
	s.discard(ctx)
}

func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *SessionService) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the bearer credential, or "" when anonymous.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionService) IsAuthenticated() bool {
	return s.Current().IsAuthenticated()
}

func (s *SessionService) IsAdmin() bool {
	return s.Current().IsAdmin()
}

// discard clears storage and memory. Memory is cleared even if storage fails
// so the store never stays half-authenticated.
func (s *SessionService) discard(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear session storage")
	}
	s.set(domain.Session{})
}

func (s *SessionService) set(sess domain.Session) {
	s.mu.Lock()
	s.session = sess
	if sess.IsAuthenticated() {
		s.state = domain.SessionAuthenticated
	} else {
		s.state = domain.SessionAnonymous
	}
	obs := make([]func(domain.Session), 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			obs = append(obs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range obs {
		fn(sess)
	}
}

func decodeUser(raw string) (*domain.User, error) {
	if raw == "" {
		return nil, errors.New("user missing")
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if !u.Role.Valid() || u.Email == "" {
		return nil, errors.New("user record incomplete")
	}
	return &u, nil
}

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
