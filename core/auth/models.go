package auth

import "time"

const ProviderGoogle = "google"

// SocialToken holds a user's delegated OAuth credential for a third-party
// provider. A user may hold several tokens for one provider (e.g. after
// re-authenticating); the freshest one wins.
type SocialToken struct {
	ID           string
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
