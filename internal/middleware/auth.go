package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/hlog"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// WithAuth requires a valid Firebase ID token in the Authorization header.
func WithAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				fail(w, http.StatusUnauthorized, "missing Authorization: Bearer <token>")
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("rejected id token")
				fail(w, http.StatusUnauthorized, "invalid token")
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}

			ctx := context.WithValue(r.Context(), authUserKey, au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects authenticated users without staff claims. It must run
// after WithAuth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		au, ok := GetAuthUser(r.Context())
		if !ok || !IsStaff(au.Claims) {
			fail(w, http.StatusForbidden, "staff only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

var staffRoles = []string{"admin", "staff", "owner", "instructor"}

// StaffClaims are the custom claims granted to front-desk accounts.
func StaffClaims() map[string]any {
	return map[string]any{
		"roles": []string{"staff"},
		"staff": true,
	}
}

// IsStaff checks the role field, boolean flags and the roles list.
func IsStaff(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if role, ok := claims["role"].(string); ok && slices.Contains(staffRoles, role) {
		return true
	}
	for _, flag := range staffRoles {
		if b, ok := claims[flag].(bool); ok && b {
			return true
		}
	}
	switch roles := claims["roles"].(type) {
	case []any:
		for _, r := range roles {
			if s, ok := r.(string); ok && slices.Contains(staffRoles, s) {
				return true
			}
		}
	case []string:
		for _, s := range roles {
			if slices.Contains(staffRoles, s) {
				return true
			}
		}
	case map[string]any:
		for _, r := range staffRoles {
			if b, ok := roles[r].(bool); ok && b {
				return true
			}
		}
	}
	return false
}

func fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
