package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/api/handler"
	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/service"
	"github.com/pulsepr/storefront/internal/infrastructure/navigation"
	"github.com/pulsepr/storefront/internal/infrastructure/notify"
)

type fixedSessions struct{ sess domain.Session }

func (f *fixedSessions) Current() domain.Session { return f.sess }
func (f *fixedSessions) State() domain.SessionState {
	if f.sess.IsAuthenticated() {
		return domain.SessionAuthenticated
	}
	return domain.SessionAnonymous
}
func (f *fixedSessions) Login(context.Context, string, string) (*domain.User, error) {
	return nil, &domain.AuthenticationError{Msg: "Invalid credentials"}
}
func (f *fixedSessions) RegisterAndLogin(context.Context, service.RegisterForm) (*domain.User, error) {
	return nil, errors.New("not used")
}
func (f *fixedSessions) Logout(context.Context) { f.sess = domain.Session{} }

type statsOnlyAdmin struct {
	handler.AdminManager
	calls int
}

func (a *statsOnlyAdmin) Stats(context.Context) (*domain.Stats, error) {
	a.calls++
	return &domain.Stats{}, nil
}

func newTestRouter(sess domain.Session, admin handler.AdminManager) *echo.Echo {
	return NewRouter(Deps{
		Sessions: &fixedSessions{sess: sess},
		Admin:    admin,
		Feed:     notify.NewCenter(10, zerolog.Nop()),
		Nav:      navigation.New("/", zerolog.Nop()),
		Readiness: map[string]handler.Check{
			"backend": func(context.Context) error { return nil },
		},
		Registerer: prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
	})
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(domain.Session{}, nil)
	if rec := serve(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_AdminRequiresSessionAndRole(t *testing.T) {
	user := &domain.User{ID: 1, Role: domain.RoleUser}
	admin := &domain.User{ID: 2, Role: domain.RoleAdmin}
	cases := []struct {
		name string
		sess domain.Session
		want int
	}{
		{"anonymous", domain.Session{}, http.StatusUnauthorized},
		{"user", domain.Session{Token: "t", User: user}, http.StatusForbidden},
		{"admin", domain.Session{Token: "t", User: admin}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &statsOnlyAdmin{}
			rec := serve(newTestRouter(tc.sess, stub), http.MethodGet, "/v1/admin/stats", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
			if (tc.want == http.StatusOK) != (stub.calls == 1) {
				t.Fatalf("stats called %d times", stub.calls)
			}
		})
	}
}

func TestRouter_LoginFailureIs401(t *testing.T) {
	e := newTestRouter(domain.Session{}, nil)
	rec := serve(e, http.MethodPost, "/v1/session/login", `{"email":"a@b.c","password":"x"}`)
	if rec.Code != http.StatusUnauthorized || errorMessage(t, rec) != "Invalid credentials" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ViewRoundTrip(t *testing.T) {
	e := newTestRouter(domain.Session{}, nil)
	if rec := serve(e, http.MethodPut, "/v1/view", `{"view":"/products"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec := serve(e, http.MethodGet, "/v1/view", "")
	if !strings.Contains(rec.Body.String(), `"view":"/products"`) {
		t.Fatalf("unexpected view %s", rec.Body.String())
	}
}

func TestResolveError(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.NewValidationError("quantity must be at least 1"), http.StatusBadRequest, "quantity must be at least 1"},
		{domain.ErrNotAuthenticated, http.StatusUnauthorized, "login required"},
		{fmt.Errorf("cart: %w", domain.ErrProductNotFound), http.StatusNotFound, "product not found"},
		{domain.ErrCheckoutInProgress, http.StatusConflict, "checkout already in progress"},
		{domain.ErrSessionEnded, http.StatusConflict, "session ended during checkout"},
		{domain.ErrVerificationFailed, http.StatusPaymentRequired, "payment verification failed"},
		{&domain.HTTPError{Status: http.StatusBadRequest, Message: "Insufficient stock"}, http.StatusBadRequest, "Insufficient stock"},
		{&domain.HTTPError{Status: http.StatusInternalServerError}, http.StatusBadGateway, "backend error"},
		{&domain.NetworkError{Method: "GET", Path: "/api/cart", Err: errors.New("refused")}, http.StatusServiceUnavailable, "backend unavailable"},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid id"), http.StatusBadRequest, "invalid id"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	e := echo.New()
	for _, tc := range cases {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		code, msg := resolveError(tc.err, zerolog.Nop(), c)
		if code != tc.code || msg != tc.msg {
			t.Errorf("%v: got %d %q, want %d %q", tc.err, code, msg, tc.code, tc.msg)
		}
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)
	if rec.Code != http.StatusForbidden || rec.Body.Len() != 0 {
		t.Fatalf("unexpected HEAD response %d %q", rec.Code, rec.Body.String())
	}
}
