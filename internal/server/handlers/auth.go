package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/clinicsync/internal/crypto"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/internal/validation"
	"github.com/iudanet/clinicsync/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации операторов
type AuthHandler struct {
	responder
	operators storage.OperatorStorage
	tokens    storage.TokenStorage
	jwtConfig JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, operators storage.OperatorStorage, tokens storage.TokenStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		operators: operators,
		tokens:    tokens,
		jwtConfig: jwtConfig,
	}
}

// Register обрабатывает POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateOperatorName(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AuthKeyHash == "" {
		h.sendError(w, "auth_key_hash is required", http.StatusBadRequest)
		return
	}
	if req.PublicSalt == "" {
		h.sendError(w, "public_salt is required", http.StatusBadRequest)
		return
	}

	operator := &models.Operator{
		ID:          uuid.New().String(),
		Username:    req.Username,
		AuthKeyHash: req.AuthKeyHash,
		PublicSalt:  req.PublicSalt,
		CreatedAt:   time.Now(),
	}

	if err := h.operators.CreateOperator(ctx, operator); err != nil {
		if errors.Is(err, storage.ErrOperatorAlreadyExists) {
			h.logger.WarnContext(ctx, "operator already exists", slog.String("username", req.Username))
			h.sendError(w, "username already taken", http.StatusConflict)
			return
		}
		h.internalError(w, r, "failed to create operator", err)
		return
	}

	h.logger.InfoContext(ctx, "operator registered",
		slog.String("username", operator.Username),
		slog.String("operator_id", operator.ID))

	h.sendJSON(w, api.RegisterResponse{
		UserID:  operator.ID,
		Message: "Operator registered successfully",
	}, http.StatusCreated)
}

// GetSalt обрабатывает GET /api/v1/auth/salt/{username}
func (h *AuthHandler) GetSalt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := chi.URLParam(r, "username")
	if err := validation.ValidateOperatorName(username); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	operator, err := h.operators.GetOperatorByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrOperatorNotFound) {
			h.logger.WarnContext(ctx, "operator not found", slog.String("username", username))
			h.sendError(w, "operator not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get operator", err)
		return
	}

	h.sendJSON(w, api.SaltResponse{PublicSalt: operator.PublicSalt}, http.StatusOK)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateOperatorName(req.Username); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AuthKeyHash == "" {
		h.sendError(w, "auth_key_hash is required", http.StatusBadRequest)
		return
	}

	operator, err := h.operators.GetOperatorByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrOperatorNotFound) {
			h.logger.WarnContext(ctx, "login failed: operator not found", slog.String("username", req.Username))
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get operator", err)
		return
	}

	if !crypto.EqualHashes(operator.AuthKeyHash, req.AuthKeyHash) {
		h.logger.WarnContext(ctx, "login failed: invalid auth key", slog.String("username", req.Username))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	resp, err := h.issueTokens(r, operator)
	if err != nil {
		h.internalError(w, r, "failed to issue tokens", err)
		return
	}

	// last_login не критичен для входа
	if err := h.operators.UpdateLastLogin(ctx, operator.ID, time.Now()); err != nil {
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "operator logged in",
		slog.String("username", operator.Username),
		slog.String("operator_id", operator.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh.
// Refresh token передается в Authorization header и ротируется.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	stored, err := h.tokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get refresh token", err)
		return
	}

	if time.Now().After(stored.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("operator_id", stored.OperatorID))
		h.sendError(w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	operator, err := h.operators.GetOperatorByID(ctx, stored.OperatorID)
	if err != nil {
		if errors.Is(err, storage.ErrOperatorNotFound) {
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get operator", err)
		return
	}

	if err := h.tokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	resp, err := h.issueTokens(r, operator)
	if err != nil {
		h.internalError(w, r, "failed to issue tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed", slog.String("operator_id", operator.ID))
	h.sendJSON(w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout.
// Удаляются все refresh tokens оператора.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	claims, err := ValidateAccessToken(h.jwtConfig, accessToken)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
		h.sendError(w, "invalid or expired access token", http.StatusUnauthorized)
		return
	}

	deleted, err := h.tokens.DeleteOperatorTokens(ctx, claims.OperatorID)
	if err != nil {
		h.internalError(w, r, "failed to delete operator tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "operator logged out",
		slog.String("operator_id", claims.OperatorID),
		slog.Int("tokens_deleted", deleted))

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueTokens(r *http.Request, operator *models.Operator) (api.TokenResponse, error) {
	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, operator.ID, operator.Username)
	if err != nil {
		return api.TokenResponse{}, err
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		return api.TokenResponse{}, err
	}

	err = h.tokens.SaveRefreshToken(r.Context(), &models.RefreshToken{
		Token:      refreshToken,
		OperatorID: operator.ID,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return api.TokenResponse{}, err
	}

	return api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
