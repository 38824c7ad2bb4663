package auth

import (
	"context"
	"testing"
	"time"

	"github.com/gradespeed/gradespeed/core"
)

type fakeRepo struct {
	tokens []SocialToken
}

func (r *fakeRepo) CreateToken(ctx context.Context, token SocialToken) (SocialToken, error) {
	r.tokens = append(r.tokens, token)
	return token, nil
}

func (r *fakeRepo) GetFreshestToken(ctx context.Context, userID, provider string) (SocialToken, error) {
	var freshest *SocialToken
	for i := range r.tokens {
		token := &r.tokens[i]
		if token.UserID != userID || token.Provider != provider {
			continue
		}
		if freshest == nil || token.ExpiresAt.After(freshest.ExpiresAt) {
			freshest = token
		}
	}
	if freshest == nil {
		return SocialToken{}, ErrCredentialMissing
	}
	return *freshest, nil
}

func TestService_TokenSource(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo, &core.Config{})

	if _, err := svc.TokenSource(ctx, "u1"); err != ErrCredentialMissing {
		t.Errorf("TokenSource() error = %v, want %v", err, ErrCredentialMissing)
	}

	now := time.Now()
	if _, err := svc.SaveToken(ctx, "u1", "tok.old", "", now.Add(time.Hour)); err != nil {
		t.Fatalf("SaveToken() failed: %v", err)
	}
	if _, err := svc.SaveToken(ctx, "u1", "tok.new", "refresh", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("SaveToken() failed: %v", err)
	}
	if _, err := svc.SaveToken(ctx, "u2", "tok.other", "", now.Add(3*time.Hour)); err != nil {
		t.Fatalf("SaveToken() failed: %v", err)
	}

	src, err := svc.TokenSource(ctx, "u1")
	if err != nil {
		t.Fatalf("TokenSource() failed: %v", err)
	}
	token, err := src.Token()
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if token.AccessToken != "tok.new" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "tok.new")
	}
}

func TestService_SaveToken(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo, &core.Config{})

	expiresAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.FixedZone("CAT", 2*60*60))
	token, err := svc.SaveToken(ctx, "u1", "tok", "refresh", expiresAt)
	if err != nil {
		t.Fatalf("SaveToken() failed: %v", err)
	}
	if token.Provider != ProviderGoogle {
		t.Errorf("Provider = %q, want %q", token.Provider, ProviderGoogle)
	}
	if token.ExpiresAt.Location() != time.UTC {
		t.Errorf("ExpiresAt not normalized to UTC: %v", token.ExpiresAt)
	}
	if !token.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, expiresAt)
	}
}
