package storage

import (
	"context"
)

// AuthStorage хранит сессию оператора на клиенте
type AuthStorage interface {
	// SaveAuth stores authentication data, replacing the current session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if valid authentication exists (not expired)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData сессия оператора. ExpiresAt в unix секундах.
type AuthData struct {
	Username     string `json:"username"`
	OperatorID   string `json:"operator_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	PublicSalt   string `json:"public_salt"`
	ExpiresAt    int64  `json:"expires_at"`
}
