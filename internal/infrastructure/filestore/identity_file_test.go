package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/service"
)

func TestIdentityFile_LoadMissing(t *testing.T) {
	store := NewIdentityFile(filepath.Join(t.TempDir(), "nope", "session.yaml"))

	identity, err := store.Load(context.Background())
	if err != nil || identity != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", identity, err)
	}
}

func TestIdentityFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session.yaml")
	store := NewIdentityFile(path)

	want := &domain.Identity{
		ID:        "u-1",
		Name:      "Asha",
		Email:     "asha@example.com",
		Role:      domain.RoleEmployer,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Token:     "tok",
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != fileMode {
		t.Fatalf("expected mode %o, got %o", fileMode, perm)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at mismatch: want %v, got %v", want.CreatedAt, got.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if *got != *want {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if got, _ := store.Load(ctx); got != nil {
		t.Fatalf("expected nothing after clear, got %+v", got)
	}
}

func TestIdentityFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("id: [unterminated"), fileMode); err != nil {
		t.Fatal(err)
	}

	if _, err := NewIdentityFile(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIdentityFile_RestoresSameRoute(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityFile(filepath.Join(t.TempDir(), "session.yaml"))
	if err := store.Save(ctx, &domain.Identity{ID: "u-1", Role: domain.RoleWorker, Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	session := service.NewSession(nil, zerolog.Nop(), service.WithIdentityStore(store))
	nav := service.NewStackNavigator(domain.RouteNone)
	service.NewGuard(nav, zerolog.Nop()).Attach(session)

	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if nav.Current() != domain.RouteTabs {
		t.Fatalf("expected %s, got %s", domain.RouteTabs, nav.Current())
	}
	if got := session.Snapshot().Identity; got == nil || got.Token != "tok" {
		t.Fatalf("expected restored identity with token, got %+v", got)
	}
}
