package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/clinicsync/internal/server/handlers"
)

// Auth проверяет JWT access token и кладет оператора в контекст запроса
func Auth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "missing Authorization header", slog.String("path", r.URL.Path))
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.WarnContext(r.Context(), "invalid Authorization header format")
				writeError(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				writeError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(r.Context(), "operator authenticated", slog.String("operator_id", claims.OperatorID))
			ctx := handlers.WithOperator(r.Context(), claims.OperatorID, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
