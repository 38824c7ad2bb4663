package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/gradespeed/gradespeed/core"
)

// ErrCredentialMissing means the user has no stored delegated credential;
// any remote call on their behalf is impossible until they re-authenticate.
var ErrCredentialMissing = errors.New("no stored credential for user")

type (
	Repository interface {
		CreateToken(ctx context.Context, token SocialToken) (SocialToken, error)
		// GetFreshestToken returns the user's token with the latest expiry
		// for the given provider, or ErrCredentialMissing.
		GetFreshestToken(ctx context.Context, userID, provider string) (SocialToken, error)
	}

	// Service implements the credential-provider contract consumed by the
	// remote API clients.
	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) SaveToken(ctx context.Context, userID, accessToken, refreshToken string, expiresAt time.Time) (SocialToken, error) {
	token := SocialToken{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     ProviderGoogle,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateToken(ctx, token)
}

// TokenSource returns an auto-refreshing oauth2 token source for the user's
// Google credential. Returns ErrCredentialMissing when none is stored.
func (svc *Service) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	token, err := svc.repo.GetFreshestToken(ctx, userID, ProviderGoogle)
	if err != nil {
		return nil, err
	}

	oauthConf := &oauth2.Config{
		ClientID:     svc.conf.Google.ClientID,
		ClientSecret: svc.conf.Google.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	return oauthConf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.ExpiresAt,
	}), nil
}
