package auth

import (
	"context"

	"github.com/iudanet/clinicsync/internal/client/storage"
	pkgapi "github.com/iudanet/clinicsync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service управляет сессией оператора: регистрация, вход, обновление
// токена и выход. Сессия хранится в локальном хранилище.
type Service interface {
	// Register регистрирует нового оператора. Сессия не создается,
	// после регистрации нужен Login.
	Register(ctx context.Context, username, password string) (*RegisterResult, error)

	// Login получает соль, выводит auth key и сохраняет токены локально
	Login(ctx context.Context, username, password string) (*storage.AuthData, error)

	// EnsureTokenValid возвращает сессию с действующим access token,
	// при необходимости обновляя его через refresh token
	EnsureTokenValid(ctx context.Context) (*storage.AuthData, error)

	// Session returns the stored session without refreshing it
	Session(ctx context.Context) (*storage.AuthData, error)

	// Logout уведомляет сервер (best effort) и всегда удаляет локальную сессию
	Logout(ctx context.Context) error
}

// APIClient серверные auth операции
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	GetSalt(ctx context.Context, username string) (*pkgapi.SaltResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}
