package middleware

import (
	"net/http"
	"strings"

	"github.com/abaplens/abaplens/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

const keyPrefixLen = 8

// Auth checks Bearer tokens against a fixed set of bcrypt hashes.
type Auth struct {
	hashes [][]byte
}

// NewAuth returns nil when no hashes are configured, which disables authentication.
func NewAuth(hashes []string) *Auth {
	if len(hashes) == 0 {
		return nil
	}
	a := &Auth{hashes: make([][]byte, len(hashes))}
	for i, h := range hashes {
		a.hashes[i] = []byte(h)
	}
	return a
}

// Authenticate validates the Bearer token and sets key_prefix in the request
// context for rate limiting.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		if len(rawKey) < keyPrefixLen {
			response.Error(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		for _, hash := range a.hashes {
			if bcrypt.CompareHashAndPassword(hash, []byte(rawKey)) == nil {
				ctx := setKeyPrefix(r.Context(), rawKey[:keyPrefixLen])
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		response.Error(w, http.StatusUnauthorized, "Invalid API key")
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
