package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	"github.com/freshmart/storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserContextKey = contextKey("user")

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		claims, err := m.parseClaims(r)
		if err != nil {
			logger.Warn("Authentication failed", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid or missing token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(m.withClaims(r.Context(), claims)))
	}
}

// AuthenticateOptional attaches claims when a valid token is present and
// lets anonymous requests through. Cart endpoints need this: anonymous
// sessions fall back to the cookie-held cart.
func (m *AuthMiddleware) AuthenticateOptional(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseClaims(r)
		if err != nil {
			// A token was sent but is bad; do not silently downgrade to
			// an anonymous cart.
			LoggerFromContext(r.Context()).Warn("Authentication failed", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(m.withClaims(r.Context(), claims)))
	}
}

func (m *AuthMiddleware) withClaims(ctx context.Context, claims *models.Claims) context.Context {

	ctx = context.WithValue(ctx, UserContextKey, claims)

	requestScopedLogger := LoggerFromContext(ctx).With(slog.String("userId", strconv.FormatInt(claims.UserID, 10)))
	ctx = context.WithValue(ctx, loggerKey, requestScopedLogger)

	return ctx
}

func (m *AuthMiddleware) parseClaims(r *http.Request) (*models.Claims, error) {

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.UnauthorizedError("Authorization header is required")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, errors.UnauthorizedError("Invalid authorization format")
	}

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.BadRequestError("unexpected signing method")
		}
		return m.jwtKey, nil
	})

	if err != nil {
		return nil, errors.UnauthorizedError("Invalid or expired token").WithError(err)
	}

	if !token.Valid {
		return nil, errors.UnauthorizedError("Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.UnauthorizedError("Token expired")
	}

	return claims, nil
}

// ClaimsFromContext returns the authenticated claims, ok=false for
// anonymous requests.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)

	return claims, ok
}
