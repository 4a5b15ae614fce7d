package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sukhpreet-s/travel-planner-api/config"
	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

type contextKey string

const (
	UsernameKey contextKey = "username"
	UserRoleKey contextKey = "userRole"
)

// Authenticate validates the bearer token and stores the username and
// role in the request context.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		panic("JWT secret key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			}, jwt.WithIssuer(jwtCfg.Issuer), jwt.WithAudience(jwtCfg.Audience))

			if err != nil {
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token"
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					errMsg = "Token has expired"
				case errors.Is(err, jwt.ErrTokenMalformed):
					errMsg = "Malformed token"
				case errors.Is(err, jwt.ErrSignatureInvalid):
					errMsg = "Invalid token signature"
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, errMsg)
				return
			}

			if !token.Valid || claims.Subject == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx = context.WithValue(ctx, UsernameKey, claims.Subject)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the ADMIN
// role. Runs after Authenticate.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok || role != string(types.RoleAdmin) {
				logger.WarnContext(r.Context(), "Admin access denied", slog.String("role", role))
				api.ErrorResponse(w, r, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
