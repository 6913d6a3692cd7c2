package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestIssueAndAuthenticate(t *testing.T) {
	a := NewAuthenticator("secret", time.Hour)

	token, err := a.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest("GET", "/me/attempts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	userID, err := a.Authenticate(req)
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1, got %q %v", userID, err)
	}

	wsReq := httptest.NewRequest("GET", "/ws?quizId=q&token="+token, nil)
	if userID, err := a.Authenticate(wsReq); err != nil || userID != "u1" {
		t.Fatalf("expected query token to authenticate, got %q %v", userID, err)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	a := NewAuthenticator("secret", time.Hour)

	missing := httptest.NewRequest("GET", "/", nil)
	if _, err := a.Authenticate(missing); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without token, got %v", err)
	}

	other, _ := NewAuthenticator("other-secret", time.Hour).Issue("u1")
	forged := httptest.NewRequest("GET", "/", nil)
	forged.Header.Set("Authorization", "Bearer "+other)
	if _, err := a.Authenticate(forged); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign signature, got %v", err)
	}

	expiring := NewAuthenticator("secret", time.Minute)
	token, _ := expiring.Issue("u1")
	expiring.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := expiring.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestDisabledAuthUsesQueryUser(t *testing.T) {
	a := NewAuthenticator("", 0)
	if a.Enabled() {
		t.Fatalf("expected disabled authenticator")
	}
	if _, err := a.Issue("u1"); err == nil {
		t.Fatalf("expected issue to fail without secret")
	}

	req := httptest.NewRequest("GET", "/ws?userId=alice", nil)
	if userID, _ := a.Authenticate(req); userID != "alice" {
		t.Fatalf("expected alice, got %q", userID)
	}
	anon := httptest.NewRequest("GET", "/ws", nil)
	if userID, _ := a.Authenticate(anon); userID != AnonymousUser {
		t.Fatalf("expected anonymous, got %q", userID)
	}
}

func TestUserContext(t *testing.T) {
	ctx := WithUser(context.Background(), "u1")
	if userID, ok := UserFrom(ctx); !ok || userID != "u1" {
		t.Fatalf("expected u1 in context")
	}
	if _, ok := UserFrom(context.Background()); ok {
		t.Fatalf("expected no user in empty context")
	}
}
