package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/clinicsync/internal/client/api"
	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/crypto"
	"github.com/iudanet/clinicsync/internal/validation"
	pkgapi "github.com/iudanet/clinicsync/pkg/api"
)

// refreshMargin токен обновляется заранее, за это время до истечения
const refreshMargin = 30 * time.Second

// ErrSessionExpired refresh token больше не принимается сервером
var ErrSessionExpired = errors.New("session expired, please login again")

// RegisterResult содержит результат регистрации
type RegisterResult struct {
	OperatorID string
	Username   string
	PublicSalt string
}

type service struct {
	apiClient APIClient
	store     storage.AuthStorage
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает сервис авторизации
func NewService(apiClient APIClient, store storage.AuthStorage, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	if err := validation.ValidateOperatorName(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	salt, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, err
	}
	hash, err := crypto.AuthKeyHash(password, username, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive auth key: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Username:    username,
		AuthKeyHash: hash,
		PublicSalt:  salt,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return &RegisterResult{
		OperatorID: resp.UserID,
		Username:   username,
		PublicSalt: salt,
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if err := validation.ValidateOperatorName(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	saltResp, err := s.apiClient.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}
	hash, err := crypto.AuthKeyHash(password, username, saltResp.PublicSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive auth key: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Username: username, AuthKeyHash: hash})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.AuthData{
		Username:     username,
		OperatorID:   s.knownOperatorID(ctx, username),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		PublicSalt:   saltResp.PublicSalt,
		ExpiresAt:    s.now().Unix() + resp.ExpiresIn,
	}
	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.apiClient.SetToken(session.AccessToken)

	return session, nil
}

func (s *service) EnsureTokenValid(ctx context.Context) (*storage.AuthData, error) {
	session, err := s.store.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	if time.Unix(session.ExpiresAt, 0).Sub(s.now()) > refreshMargin {
		s.apiClient.SetToken(session.AccessToken)
		return session, nil
	}

	resp, err := s.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	session.AccessToken = resp.AccessToken
	session.RefreshToken = resp.RefreshToken
	session.ExpiresAt = s.now().Unix() + resp.ExpiresIn
	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}
	s.apiClient.SetToken(session.AccessToken)

	s.logger.DebugContext(ctx, "access token refreshed", slog.String("username", session.Username))
	return session, nil
}

func (s *service) Session(ctx context.Context) (*storage.AuthData, error) {
	return s.store.GetAuth(ctx)
}

func (s *service) Logout(ctx context.Context) error {
	session, err := s.store.GetAuth(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "no auth data found during logout", slog.Any("error", err))
	} else {
		s.apiClient.SetToken(session.AccessToken)
		if err := s.apiClient.Logout(ctx); err != nil {
			// сервер может быть недоступен, локальная сессия удаляется все равно
			s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.store.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	s.apiClient.SetToken("")
	return nil
}

// knownOperatorID сохраняет id оператора между повторными входами на том же
// рабочем месте
func (s *service) knownOperatorID(ctx context.Context, username string) string {
	prev, err := s.store.GetAuth(ctx)
	if err != nil || prev.Username != username {
		return ""
	}
	return prev.OperatorID
}
