package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
)

// ---- auth ----

type stubAuthAPI struct {
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) error
	logins     int
	registers  int
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	s.logins++
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return "token-1", &domain.User{ID: 1, Name: "Ana", Email: email, Role: domain.RoleUser}, nil
}

func (s *stubAuthAPI) Register(ctx context.Context, in ports.RegisterInput) error {
	s.registers++
	if s.registerFn != nil {
		return s.registerFn(ctx, in)
	}
	return nil
}

// ---- storage ----

type memStorage struct {
	mu      sync.Mutex
	data    ports.StoredSession
	loadErr error
	saveErr error
	clears  int
}

func (m *memStorage) Load(context.Context) (ports.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.loadErr
}

func (m *memStorage) Save(_ context.Context, s ports.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = s
	return nil
}

func (m *memStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.data = ports.StoredSession{}
	return nil
}

// ---- ui ----

type note struct {
	level   ports.Level
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recordingNotifier) Notify(level ports.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{level, message})
}

func (r *recordingNotifier) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type stubNavigator struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func (n *stubNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *stubNavigator) Navigate(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = view
	n.visits = append(n.visits, view)
}

type stubWidget struct {
	openFn func(ctx context.Context, req ports.WidgetRequest) error
	opened []ports.WidgetRequest
	closed []string
}

func (w *stubWidget) Close(attemptID string) { w.closed = append(w.closed, attemptID) }

func (w *stubWidget) Open(ctx context.Context, req ports.WidgetRequest) error {
	w.opened = append(w.opened, req)
	if w.openFn != nil {
		return w.openFn(ctx, req)
	}
	return nil
}

// ---- session source ----

type fixedSession struct {
	sess domain.Session
}

func (f *fixedSession) Current() domain.Session { return f.sess }

func userSession() *fixedSession {
	return &fixedSession{sess: domain.Session{
		Token: "tok",
		User:  &domain.User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser},
	}}
}

func adminSession() *fixedSession {
	return &fixedSession{sess: domain.Session{
		Token: "tok",
		User:  &domain.User{ID: 1, Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin},
	}}
}

func anonymous() *fixedSession { return &fixedSession{} }

// ---- errors ----

func backendErr(status int, msg string) error {
	return &domain.HTTPError{Method: http.MethodPost, Path: "/api/test", Status: status, Message: msg}
}

var errNetwork = &domain.NetworkError{Method: http.MethodGet, Path: "/api/test", Err: errors.New("connection refused")}
