package dummydb

import (
	"context"

	"github.com/gradespeed/gradespeed/core/auth"
)

type tokenRepository struct {
	db *DB
}

var _ auth.Repository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository(db *DB) auth.Repository {
	return &tokenRepository{db: db}
}

func (repo *tokenRepository) CreateToken(ctx context.Context, token auth.SocialToken) (auth.SocialToken, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.tokens[token.ID] = &token
	return token, nil
}

func (repo *tokenRepository) GetFreshestToken(ctx context.Context, userID, provider string) (auth.SocialToken, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var freshest *auth.SocialToken
	for _, token := range repo.db.tokens {
		if token.UserID != userID || token.Provider != provider {
			continue
		}
		if freshest == nil || token.ExpiresAt.After(freshest.ExpiresAt) {
			freshest = token
		}
	}
	if freshest == nil {
		return auth.SocialToken{}, auth.ErrCredentialMissing
	}
	return *freshest, nil
}
