package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// authenticated user ID in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth gates protected routes. It reads the bearer token from the
// Authorization header, validates it, and stores the user ID in the request
// context. Missing or invalid tokens end the request with 401; the wrapped
// handler is never invoked.
//
// This is the single enforcement point — handlers behind it trust
// UserIDFromContext and do not re-verify.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"auth_error","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or ("", false) when
// the request did not pass through RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// errNoToken is returned when the Authorization header is absent or not a
// bearer credential.
var errNoToken = &tokenError{"no bearer token"}

type tokenError struct{ msg string }

func (e *tokenError) Error() string { return "auth: " + e.msg }

// extractUserID pulls the token from "Authorization: Bearer <token>" and
// validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errNoToken
	}

	return tokens.Validate(strings.TrimSpace(token))
}
