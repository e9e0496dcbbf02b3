package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// withURLParam кладет параметр chi маршрута в запрос
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

// mockOperatorStorage is a mock implementation of OperatorStorage for testing
type mockOperatorStorage struct {
	operators       map[string]*models.Operator // username -> Operator
	createError     error
	getError        error
	updateLastLogin func(ctx context.Context, operatorID string, loginTime time.Time) error
}

func newMockOperatorStorage(ops ...*models.Operator) *mockOperatorStorage {
	m := &mockOperatorStorage{operators: make(map[string]*models.Operator)}
	for _, op := range ops {
		m.operators[op.Username] = op
	}
	return m
}

func (m *mockOperatorStorage) CreateOperator(ctx context.Context, operator *models.Operator) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.operators[operator.Username]; exists {
		return storage.ErrOperatorAlreadyExists
	}
	m.operators[operator.Username] = operator
	return nil
}

func (m *mockOperatorStorage) GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	op, ok := m.operators[username]
	if !ok {
		return nil, storage.ErrOperatorNotFound
	}
	return op, nil
}

func (m *mockOperatorStorage) GetOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, op := range m.operators {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, storage.ErrOperatorNotFound
}

func (m *mockOperatorStorage) UpdateLastLogin(ctx context.Context, operatorID string, loginTime time.Time) error {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, operatorID, loginTime)
	}
	return nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens        map[string]*models.RefreshToken // token -> RefreshToken
	saveError     error
	getError      error
	deleteError   error
	savedTokens   []*models.RefreshToken
	deletedTokens []string
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	m.savedTokens = append(m.savedTokens, token)
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	m.deletedTokens = append(m.deletedTokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteOperatorTokens(ctx context.Context, operatorID string) (int, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	count := 0
	for token, rt := range m.tokens {
		if rt.OperatorID == operatorID {
			delete(m.tokens, token)
			m.deletedTokens = append(m.deletedTokens, token)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func deskOperator() *models.Operator {
	return &models.Operator{
		ID:          "op-1",
		Username:    "reception",
		AuthKeyHash: "hash123",
		PublicSalt:  "salt123",
		CreatedAt:   time.Now(),
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	operators := newMockOperatorStorage()
	handler := NewAuthHandler(setupTestLogger(), operators, newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, api.RegisterRequest{
		Username:    "reception",
		AuthKeyHash: "hash123",
		PublicSalt:  "salt123",
	}))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response api.RegisterResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.UserID)

	op, err := operators.GetOperatorByUsername(context.Background(), "reception")
	require.NoError(t, err)
	assert.Equal(t, response.UserID, op.ID)
	assert.Equal(t, "hash123", op.AuthKeyHash)
	assert.Equal(t, "salt123", op.PublicSalt)
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(), newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(), newMockTokenStorage(), testJWTConfig())

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"empty username", api.RegisterRequest{AuthKeyHash: "h", PublicSalt: "s"}},
		{"too short", api.RegisterRequest{Username: "ab", AuthKeyHash: "h", PublicSalt: "s"}},
		{"invalid chars", api.RegisterRequest{Username: "user@name", AuthKeyHash: "h", PublicSalt: "s"}},
		{"no auth key hash", api.RegisterRequest{Username: "reception", PublicSalt: "s"}},
		{"no salt", api.RegisterRequest{Username: "reception", AuthKeyHash: "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, tt.req))
			w := httptest.NewRecorder()
			handler.Register(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, api.RegisterRequest{
		Username:    "reception",
		AuthKeyHash: "other",
		PublicSalt:  "other",
	}))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_StorageError(t *testing.T) {
	operators := newMockOperatorStorage()
	operators.createError = errors.New("disk full")
	handler := NewAuthHandler(setupTestLogger(), operators, newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, api.RegisterRequest{
		Username:    "reception",
		AuthKeyHash: "hash123",
		PublicSalt:  "salt123",
	}))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestAuthHandler_GetSalt(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), newMockTokenStorage(), testJWTConfig())

	t.Run("found", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/reception", nil), "username", "reception")
		w := httptest.NewRecorder()
		handler.GetSalt(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp api.SaltResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "salt123", resp.PublicSalt)
	})

	t.Run("not found", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/nobody", nil), "username", "nobody")
		w := httptest.NewRecorder()
		handler.GetSalt(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid username", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/a", nil), "username", "a")
		w := httptest.NewRecorder()
		handler.GetSalt(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_GetSalt_DBError(t *testing.T) {
	operators := newMockOperatorStorage()
	operators.getError = errors.New("db down")
	handler := NewAuthHandler(setupTestLogger(), operators, newMockTokenStorage(), testJWTConfig())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/reception", nil), "username", "reception")
	w := httptest.NewRecorder()
	handler.GetSalt(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	var lastLoginFor string
	operators := newMockOperatorStorage(deskOperator())
	operators.updateLastLogin = func(ctx context.Context, operatorID string, loginTime time.Time) error {
		lastLoginFor = operatorID
		return nil
	}
	tokens := newMockTokenStorage()
	cfg := testJWTConfig()
	handler := NewAuthHandler(setupTestLogger(), operators, tokens, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, api.LoginRequest{
		Username:    "reception",
		AuthKeyHash: "hash123",
	}))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := ValidateAccessToken(cfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
	assert.Equal(t, "reception", claims.Username)

	require.Len(t, tokens.savedTokens, 1)
	assert.Equal(t, "op-1", tokens.savedTokens[0].OperatorID)
	assert.Equal(t, "op-1", lastLoginFor)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), newMockTokenStorage(), testJWTConfig())

	tests := []struct {
		name string
		req  api.LoginRequest
	}{
		{"unknown operator", api.LoginRequest{Username: "nobody", AuthKeyHash: "hash123"}},
		{"wrong hash", api.LoginRequest{Username: "reception", AuthKeyHash: "wrong"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, tt.req))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "invalid credentials")
		})
	}
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), newMockTokenStorage(), testJWTConfig())

	for _, body := range []api.LoginRequest{
		{Username: "", AuthKeyHash: "hash123"},
		{Username: "reception"},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestAuthHandler_Login_UpdateLastLoginError(t *testing.T) {
	operators := newMockOperatorStorage(deskOperator())
	operators.updateLastLogin = func(ctx context.Context, operatorID string, loginTime time.Time) error {
		return errors.New("update failed")
	}
	handler := NewAuthHandler(setupTestLogger(), operators, newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, api.LoginRequest{
		Username:    "reception",
		AuthKeyHash: "hash123",
	}))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Login_SaveTokenError(t *testing.T) {
	tokens := newMockTokenStorage()
	tokens.saveError = errors.New("save failed")
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), tokens, testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, api.LoginRequest{
		Username:    "reception",
		AuthKeyHash: "hash123",
	}))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	tokens := newMockTokenStorage()
	tokens.tokens["old-token"] = &models.RefreshToken{
		Token:      "old-token",
		OperatorID: "op-1",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), tokens, testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEqual(t, "old-token", resp.RefreshToken)

	assert.Equal(t, []string{"old-token"}, tokens.deletedTokens)
	assert.Contains(t, tokens.tokens, resp.RefreshToken)
	assert.NotContains(t, tokens.tokens, "old-token")
}

func TestAuthHandler_Refresh_Rejected(t *testing.T) {
	tokens := newMockTokenStorage()
	tokens.tokens["expired"] = &models.RefreshToken{
		Token:      "expired",
		OperatorID: "op-1",
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	tokens.tokens["orphan"] = &models.RefreshToken{
		Token:      "orphan",
		OperatorID: "deleted-operator",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), tokens, testJWTConfig())

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer unknown"},
		{"expired", "Bearer expired"},
		{"operator gone", "Bearer orphan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.Refresh(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthHandler_Refresh_SaveRefreshTokenError(t *testing.T) {
	tokens := newMockTokenStorage()
	tokens.tokens["old-token"] = &models.RefreshToken{
		Token:      "old-token",
		OperatorID: "op-1",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	tokens.saveError = errors.New("save failed")
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), tokens, testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	cfg := testJWTConfig()
	tokens := newMockTokenStorage()
	tokens.tokens["t1"] = &models.RefreshToken{Token: "t1", OperatorID: "op-1"}
	tokens.tokens["t2"] = &models.RefreshToken{Token: "t2", OperatorID: "op-1"}
	tokens.tokens["t3"] = &models.RefreshToken{Token: "t3", OperatorID: "op-2"}
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(deskOperator()), tokens, cfg)

	accessToken, _, err := GenerateAccessToken(cfg, "op-1", "reception")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, tokens.tokens, 1)
	assert.Contains(t, tokens.tokens, "t3")
}

func TestAuthHandler_Logout_InvalidToken(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockOperatorStorage(), newMockTokenStorage(), testJWTConfig())

	for _, header := range []string{"", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.Logout(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}
