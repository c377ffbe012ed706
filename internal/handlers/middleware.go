package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/inkwell-blog/apiserver/internal/auth"
)

// RequireAuth enforces bearer-token authentication and injects the
// caller identity into the request context. A missing token is
// reported as 401, an invalid or expired one as 403. The token's
// claims are trusted for the duration of the request; the user
// repository is not consulted.
func RequireAuth(tokens *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			caller, err := tokens.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextCallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
