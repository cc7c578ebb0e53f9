package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pulsepr/storefront/internal/core/ports"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStorage(path)
	ctx := context.Background()

	got, err := s.Load(ctx)
	if err != nil || got != (ports.StoredSession{}) {
		t.Fatalf("missing file should load empty, got %+v, %v", got, err)
	}

	want := ports.StoredSession{Token: "jwt", User: `{"id":1}`}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err = NewFileStorage(path).Load(ctx)
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
	if got, _ := s.Load(ctx); got != (ports.StoredSession{}) {
		t.Fatalf("expected empty session after Clear, got %+v", got)
	}
}

func TestFileStorage_UsesStorageKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := NewFileStorage(path).Save(context.Background(), ports.StoredSession{Token: "t", User: "u"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != `{"pulsepr_token":"t","pulsepr_user":"u"}` {
		t.Fatalf("unexpected file content %s", raw)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewFileStorage(path).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error for a corrupt file")
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	_ = m.Save(ctx, ports.StoredSession{Token: "a", User: "b"})
	if got, _ := m.Load(ctx); got.Token != "a" || got.User != "b" {
		t.Fatalf("unexpected session %+v", got)
	}
	_ = m.Clear(ctx)
	if got, _ := m.Load(ctx); got != (ports.StoredSession{}) {
		t.Fatalf("expected empty session, got %+v", got)
	}
}
