package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

type recordingNav struct {
	current string
	visits  []string
}

func (n *recordingNav) Current() string { return n.current }
func (n *recordingNav) Navigate(view string) {
	n.current = view
	n.visits = append(n.visits, view)
}

func newClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost:5000"); err == nil {
		t.Fatalf("expected error for a URL without scheme")
	}
}

func TestClient_BearerAuth(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		if present {
			got = append(got, r.Header.Get("Authorization"))
		} else {
			got = append(got, "<none>")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	token := staticToken("abc")
	withToken := newClient(t, srv, WithRequestInterceptor(BearerAuth(token)))
	anonymous := newClient(t, srv, WithRequestInterceptor(BearerAuth(staticToken(""))))

	if err := withToken.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/cart"}, nil); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if err := anonymous.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"}, nil); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got[0] != "Bearer abc" || got[1] != "<none>" {
		t.Fatalf("unexpected Authorization headers %v", got)
	}
}

func TestClient_DecodesJSONAndSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/search" || r.URL.Query().Get("q") != "hood ie" {
			t.Errorf("unexpected url %s", r.URL)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if r.Method == http.MethodPost && (in["quantity"] != float64(2) || r.Header.Get("Content-Type") != "application/json") {
			t.Errorf("unexpected body %v", in)
		}
		_, _ = io.WriteString(w, `{"products":[{"id":1,"name":"Hood"}]}`)
	}))
	defer srv.Close()
	c := newClient(t, srv)

	var out struct {
		Products []domain.Product `json:"products"`
	}
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/products/search",
		Query:  url.Values{"q": {"hood ie"}},
		Body:   map[string]int{"quantity": 2},
	}, &out)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if len(out.Products) != 1 || out.Products[0].Name != "Hood" {
		t.Fatalf("unexpected decode %+v", out)
	}
}

func TestClient_HTTPErrorCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"Insufficient stock"}`)
	}))
	defer srv.Close()
	c := newClient(t, srv)

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/cart"}, nil)
	var he *domain.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusBadRequest || he.Message != "Insufficient stock" {
		t.Fatalf("unexpected error %+v", he)
	}
	if errors.Is(err, domain.ErrAuthorizationExpired) {
		t.Fatalf("400 must not match ErrAuthorizationExpired")
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newClient(t, srv)
	srv.Close()

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/cart"}, nil)
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClient_UnauthorizedRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
	}))
	defer srv.Close()

	sessions := &countingInvalidator{}
	nav := &recordingNav{current: ports.ViewCart}
	c := newClient(t, srv, WithResponseInterceptor(UnauthorizedRedirect(sessions, nav, DefaultLoginViews, zerolog.Nop())))

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/cart"}, nil)
	if !errors.Is(err, domain.ErrAuthorizationExpired) {
		t.Fatalf("expected ErrAuthorizationExpired, got %v", err)
	}
	// the interceptor has already run when Do returns
	if sessions.calls != 1 || len(nav.visits) != 1 || nav.current != ports.ViewLogin {
		t.Fatalf("expected one invalidation and one redirect, got %d / %v", sessions.calls, nav.visits)
	}

	_ = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/cart"}, nil)
	if len(nav.visits) != 1 {
		t.Fatalf("already on login: expected no second redirect, got %v", nav.visits)
	}
}

func TestClient_UnauthorizedOnLoginViewDoesNotRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sessions := &countingInvalidator{}
	nav := &recordingNav{current: "/login?next=/cart"}
	c := newClient(t, srv, WithResponseInterceptor(UnauthorizedRedirect(sessions, nav, DefaultLoginViews, zerolog.Nop())))

	_ = c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/auth/login"}, nil)
	if len(nav.visits) != 0 {
		t.Fatalf("expected no redirect from the login view, got %v", nav.visits)
	}
}

func TestClient_InterceptorOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen", r.Header.Get("X-Trace"))
	}))
	defer srv.Close()

	var order []string
	c := newClient(t, srv,
		WithRequestInterceptor(func(r *http.Request) error { order = append(order, "req1"); r.Header.Set("X-Trace", "1"); return nil }),
		WithRequestInterceptor(func(r *http.Request) error { order = append(order, "req2"); return nil }),
		WithResponseInterceptor(func(_ *http.Request, resp *http.Response) { order = append(order, "resp1:"+resp.Header.Get("X-Seen")) }),
		WithResponseInterceptor(func(*http.Request, *http.Response) { order = append(order, "resp2") }),
	)
	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	want := []string{"req1", "req2", "resp1:1", "resp2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("interceptor order %v, want %v", order, want)
		}
	}

	abort := newClient(t, srv, WithRequestInterceptor(func(*http.Request) error { return errors.New("blocked") }))
	if err := abort.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil); err == nil {
		t.Fatalf("expected request interceptor error to abort the call")
	}
}

func TestClient_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		files := r.MultipartForm.File["images"]
		if len(files) != 2 || r.FormValue("note") != "hi" {
			t.Errorf("unexpected form: %d files, note=%q", len(files), r.FormValue("note"))
		}
		_, _ = io.WriteString(w, `{"images":["/u/a.png","/u/b.png"]}`)
	}))
	defer srv.Close()
	c := newClient(t, srv)

	var out struct {
		Images []string `json:"images"`
	}
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/admin/product/upload-image",
		Multipart: &Multipart{
			Fields: map[string]string{"note": "hi"},
			Files: []File{
				{Field: "images", Name: "a.png", Content: []byte("a")},
				{Field: "images", Name: "b.png", Content: []byte("b")},
			},
		},
	}, &out)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if len(out.Images) != 2 {
		t.Fatalf("unexpected response %+v", out)
	}
}
