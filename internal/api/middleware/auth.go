package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lernquiz/lernquiz-go/internal/api/apierr"
	"github.com/lernquiz/lernquiz-go/internal/services/account"
)

type contextKey string

const (
	usernameContextKey contextKey = "username"
	sessionContextKey  contextKey = "session"
)

// Auth creates authentication middleware
func Auth(accounts *account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := accounts.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, session)
			ctx = context.WithValue(ctx, usernameContextKey, session.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetUser returns the authenticated username from the request context
func GetUser(ctx context.Context) string {
	username, _ := ctx.Value(usernameContextKey).(string)
	return username
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *account.Session {
	session, _ := ctx.Value(sessionContextKey).(*account.Session)
	return session
}

// MustGetUser returns the authenticated username or panics
func MustGetUser(ctx context.Context) string {
	username := GetUser(ctx)
	if username == "" {
		panic("no user in context - auth middleware not applied?")
	}
	return username
}
