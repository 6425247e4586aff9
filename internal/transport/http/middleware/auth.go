package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// UserKey is the context key for the authenticated user record
	UserKey contextKey = "user"
)

// TokenChecker resolves bearer tokens to accounts.
type TokenChecker interface {
	CheckToken(ctx context.Context, token string) (*model.User, error)
}

// LastSeenToucher records account activity.
type LastSeenToucher interface {
	TouchLastSeen(ctx context.Context, userID int64) error
}

// AuthMiddleware validates the Authorization bearer token against the user
// store. Tokens are opaque database-backed strings, so revocation takes
// effect immediately. Every authenticated request also refreshes last_seen.
func AuthMiddleware(auth TokenChecker, users LastSeenToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			user, err := auth.CheckToken(r.Context(), tokenString)
			if err != nil {
				httputil.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if err := users.TouchLastSeen(r.Context(), user.ID); err != nil {
				// Activity tracking must not fail the request
				log.Printf("[Auth] TouchLastSeen failed: user=%d err=%v", user.ID, err)
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves a bearer token when present but lets
// anonymous requests through. Used on public endpoints that enrich their
// response for authenticated viewers.
func OptionalAuthMiddleware(auth TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.CheckToken(r.Context(), tokenString)
			if err != nil {
				// A bad token on a public endpoint degrades to anonymous
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetUserFromContext extracts the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok
}
