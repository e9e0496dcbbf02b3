package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clinicsync/internal/client/api"
	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/crypto"
	pkgapi "github.com/iudanet/clinicsync/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *auth
	m.data = &cp
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *m.data
	return &cp, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.data != nil && m.data.ExpiresAt > time.Now().Unix(), nil
}

// mockAPIClient запоминает запросы и отдает заранее заданные ответы
type mockAPIClient struct {
	registerReq  *pkgapi.RegisterRequest
	loginReq     *pkgapi.LoginRequest
	refreshResp  *pkgapi.TokenResponse
	refreshErr   error
	loginErr     error
	logoutErr    error
	salt         string
	token        string
	refreshToken string
	logoutCalls  int
}

func (m *mockAPIClient) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	m.registerReq = &req
	return &pkgapi.RegisterResponse{UserID: "op-1", Message: "registered"}, nil
}

func (m *mockAPIClient) GetSalt(ctx context.Context, username string) (*pkgapi.SaltResponse, error) {
	if m.salt == "" {
		return nil, &api.StatusError{StatusCode: 404, Message: "user not found"}
	}
	return &pkgapi.SaltResponse{PublicSalt: m.salt}, nil
}

func (m *mockAPIClient) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
	m.loginReq = &req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &pkgapi.TokenResponse{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 900}, nil
}

func (m *mockAPIClient) Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
	m.refreshToken = refreshToken
	return m.refreshResp, m.refreshErr
}

func (m *mockAPIClient) Logout(ctx context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockAPIClient) SetToken(token string) { m.token = token }

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(apiClient *mockAPIClient, store *mockAuthStorage, now time.Time) *service {
	svc := NewService(apiClient, store, setupTestLogger()).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRegister(t *testing.T) {
	apiClient := &mockAPIClient{}
	svc := newTestService(apiClient, &mockAuthStorage{}, time.Now())

	result, err := svc.Register(context.Background(), "reception", "desk-password-1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", result.OperatorID)

	require.NotNil(t, apiClient.registerReq)
	assert.Equal(t, result.PublicSalt, apiClient.registerReq.PublicSalt)
	// на сервер уходит только хеш производного ключа
	want, err := crypto.AuthKeyHash("desk-password-1", "reception", result.PublicSalt)
	require.NoError(t, err)
	assert.Equal(t, want, apiClient.registerReq.AuthKeyHash)
	assert.NotContains(t, apiClient.registerReq.AuthKeyHash, "desk-password-1")
}

func TestRegister_Validation(t *testing.T) {
	apiClient := &mockAPIClient{}
	svc := newTestService(apiClient, &mockAuthStorage{}, time.Now())

	_, err := svc.Register(context.Background(), "a", "desk-password-1")
	assert.Error(t, err)
	_, err = svc.Register(context.Background(), "reception", "short")
	assert.Error(t, err)
	assert.Nil(t, apiClient.registerReq)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)

	apiClient := &mockAPIClient{salt: salt}
	store := &mockAuthStorage{}
	svc := newTestService(apiClient, store, now)

	session, err := svc.Login(ctx, "reception", "desk-password-1")
	require.NoError(t, err)

	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, now.Unix()+900, session.ExpiresAt)
	assert.Equal(t, "access-1", apiClient.token)
	require.NotNil(t, store.data)
	assert.Equal(t, salt, store.data.PublicSalt)

	want, err := crypto.AuthKeyHash("desk-password-1", "reception", salt)
	require.NoError(t, err)
	assert.Equal(t, want, apiClient.loginReq.AuthKeyHash)
}

func TestLogin_KeepsOperatorID(t *testing.T) {
	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)
	store := &mockAuthStorage{data: &storage.AuthData{Username: "reception", OperatorID: "op-1"}}
	svc := newTestService(&mockAPIClient{salt: salt}, store, time.Now())

	session, err := svc.Login(context.Background(), "reception", "desk-password-1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", session.OperatorID)

	session, err = svc.Login(context.Background(), "doctor", "desk-password-1")
	require.NoError(t, err)
	assert.Empty(t, session.OperatorID)
}

func TestLogin_Errors(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mockAPIClient{}, &mockAuthStorage{}, time.Now())
	_, err := svc.Login(ctx, "reception", "desk-password-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get salt")

	salt, err := crypto.GenerateSaltBase64()
	require.NoError(t, err)
	store := &mockAuthStorage{}
	svc = newTestService(&mockAPIClient{salt: salt, loginErr: &api.StatusError{StatusCode: 401}}, store, time.Now())
	_, err = svc.Login(ctx, "reception", "desk-password-1")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Nil(t, store.data)
}

func TestEnsureTokenValid(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		refreshErr  error
		name        string
		expiresAt   time.Time
		wantToken   string
		wantErr     bool
		wantRefresh bool
	}{
		{name: "valid token", expiresAt: now.Add(10 * time.Minute), wantToken: "access-old"},
		{name: "about to expire", expiresAt: now.Add(10 * time.Second), wantToken: "access-new", wantRefresh: true},
		{name: "expired", expiresAt: now.Add(-time.Hour), wantToken: "access-new", wantRefresh: true},
		{name: "refresh rejected", expiresAt: now.Add(-time.Hour), refreshErr: &api.StatusError{StatusCode: 401}, wantErr: true, wantRefresh: true},
		{name: "server down", expiresAt: now.Add(-time.Hour), refreshErr: fmt.Errorf("connection refused"), wantErr: true, wantRefresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiClient := &mockAPIClient{
				refreshResp: &pkgapi.TokenResponse{AccessToken: "access-new", RefreshToken: "refresh-new", ExpiresIn: 900},
				refreshErr:  tt.refreshErr,
			}
			store := &mockAuthStorage{data: &storage.AuthData{
				Username:     "reception",
				AccessToken:  "access-old",
				RefreshToken: "refresh-old",
				ExpiresAt:    tt.expiresAt.Unix(),
			}}
			svc := newTestService(apiClient, store, now)

			session, err := svc.EnsureTokenValid(ctx)
			if tt.wantRefresh {
				assert.Equal(t, "refresh-old", apiClient.refreshToken)
			} else {
				assert.Empty(t, apiClient.refreshToken)
			}
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "access-old", store.data.AccessToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, session.AccessToken)
			assert.Equal(t, tt.wantToken, apiClient.token)
			assert.Equal(t, tt.wantToken, store.data.AccessToken)
		})
	}
}

func TestEnsureTokenValid_SessionExpired(t *testing.T) {
	apiClient := &mockAPIClient{refreshErr: &api.StatusError{StatusCode: 401}}
	store := &mockAuthStorage{data: &storage.AuthData{RefreshToken: "r"}}
	svc := newTestService(apiClient, store, time.Now())

	_, err := svc.EnsureTokenValid(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestEnsureTokenValid_NoSession(t *testing.T) {
	svc := newTestService(&mockAPIClient{}, &mockAuthStorage{}, time.Now())
	_, err := svc.EnsureTokenValid(context.Background())
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("server unavailable", func(t *testing.T) {
		apiClient := &mockAPIClient{logoutErr: fmt.Errorf("connection refused")}
		store := &mockAuthStorage{data: &storage.AuthData{AccessToken: "a"}}
		svc := newTestService(apiClient, store, time.Now())

		require.NoError(t, svc.Logout(ctx))
		assert.Equal(t, 1, apiClient.logoutCalls)
		assert.Nil(t, store.data)
		assert.Empty(t, apiClient.token)
	})

	t.Run("no session", func(t *testing.T) {
		apiClient := &mockAPIClient{}
		svc := newTestService(apiClient, &mockAuthStorage{}, time.Now())

		require.NoError(t, svc.Logout(ctx))
		assert.Zero(t, apiClient.logoutCalls)
	})

	t.Run("delete fails", func(t *testing.T) {
		store := &mockAuthStorage{deleteErr: fmt.Errorf("disk full")}
		svc := newTestService(&mockAPIClient{}, store, time.Now())
		assert.Error(t, svc.Logout(ctx))
	})
}
