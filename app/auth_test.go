package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formworks/formworks/adapters/auth"
	"github.com/formworks/formworks/adapters/clock"
	"github.com/formworks/formworks/adapters/hasher"
	"github.com/formworks/formworks/adapters/idgen"
	"github.com/formworks/formworks/adapters/memory"
	"github.com/formworks/formworks/app"
)

func newAuthService() *app.AuthService {
	db := memory.NewDB()
	return app.NewAuthService(app.AuthDeps{
		Admins: memory.NewAdminStore(db),
		Hasher: hasher.Fake{},
		Tokens: auth.NewTokenService("test-secret", time.Hour),
		Clock:  clock.NewFake(baseTime),
		IDGen:  idgen.NewSequential("admin-"),
		Logger: zerolog.Nop(),
	})
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.CreateAdmin(ctx, "Alice", "s3cret", "alice@example.com"); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	res, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.Username != "alice" {
		t.Errorf("login result wrong: %+v", res)
	}
	if !res.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt in the past: %v", res.ExpiresAt)
	}

	id, err := svc.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Username != "alice" || id.ID != "admin-1" {
		t.Errorf("identity = %+v", id)
	}
}

func TestAuthService_Login_FailuresCollapse(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.CreateAdmin(ctx, "alice", "s3cret", ""); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	// Unknown user and wrong password look identical to the caller.
	if _, err := svc.Login(ctx, "nobody", "s3cret"); !errors.Is(err, app.ErrUnauthorized) {
		t.Errorf("unknown user: got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, app.ErrUnauthorized) {
		t.Errorf("wrong password: got %v", err)
	}
}

func TestAuthService_Verify_RejectsGarbage(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, app.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Tokens signed with a different secret fail too.
	other := auth.NewTokenService("other-secret", time.Hour)
	token, _, err := other.Generate("alice", "admin-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, app.ErrUnauthorized) {
		t.Errorf("foreign token accepted: %v", err)
	}
}

func TestAuthService_CreateAdmin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	a, err := svc.CreateAdmin(ctx, "  Alice  ", "s3cret", "alice@example.com")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if a.Username != "alice" {
		t.Errorf("username not normalized: %q", a.Username)
	}
	if !a.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, baseTime)
	}

	if _, err := svc.CreateAdmin(ctx, "alice", "again", ""); !errors.Is(err, app.ErrConflict) {
		t.Errorf("duplicate username: got %v", err)
	}

	var ve *app.ValidationError
	if _, err := svc.CreateAdmin(ctx, "", "s3cret", ""); !errors.As(err, &ve) {
		t.Errorf("empty username: got %v", err)
	}
	if _, err := svc.CreateAdmin(ctx, "bob", "", ""); !errors.As(err, &ve) {
		t.Errorf("empty password: got %v", err)
	}
}

func TestAuthService_Seed_Idempotent(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if err := svc.Seed(ctx, "Admin", "s3cret", "admin@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Second seed is a no-op, not a conflict.
	if err := svc.Seed(ctx, "admin", "different", ""); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	// The original password survives.
	if _, err := svc.Login(ctx, "admin", "s3cret"); err != nil {
		t.Errorf("original credentials broken: %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "different"); !errors.Is(err, app.ErrUnauthorized) {
		t.Errorf("reseed replaced password: %v", err)
	}
}
