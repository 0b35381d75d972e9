package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/tasktrack/apiserver/pkg/errors"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// Identity is the authenticated identity attached to a request after the
// bearer token has been resolved against the live user record.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Superuser bool   `json:"superuser"`
}

// IdentityResolver resolves a bearer token string into an authenticated
// identity. Implementations decode the token and look up the current user
// record, so a deactivated account fails resolution even if the token is
// still within its TTL.
type IdentityResolver func(ctx context.Context, token string) (*Identity, error)

// Auth middleware extracts the bearer token from the Authorization header,
// resolves it, and injects the resulting identity into the request context.
// Missing or invalid tokens produce a 401 with a WWW-Authenticate challenge;
// a resolver error carrying a 403 status (inactive account) is passed through
// without the challenge.
func Auth(resolve IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			identity, err := resolve(r.Context(), parts[1])
			if err != nil {
				status := apperrors.HTTPStatus(err)
				if status == http.StatusForbidden {
					writeAuthError(w, http.StatusForbidden, "FORBIDDEN", authErrorMessage(err, "account is inactive"))
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", authErrorMessage(err, "invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser checks that the authenticated identity has the superuser flag.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || !identity.Superuser {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext extracts the authenticated identity from the request
// context, or nil if the request did not pass through Auth.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// UserIDFromContext extracts the authenticated user's ID, or 0 if absent.
func UserIDFromContext(ctx context.Context) int64 {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return 0
}

// UsernameFromContext extracts the authenticated user's username, or "" if absent.
func UsernameFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Username
	}
	return ""
}

// authErrorMessage prefers the structured application error message when the
// resolver returned one, so callers see "inactive user" rather than a generic
// phrase, without ever leaking wrapped internal errors.
func authErrorMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
