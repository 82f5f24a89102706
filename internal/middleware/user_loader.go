package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const UserIDKey ctxKey = "user_id"

// TokenVerifier resolves a raw bearer token to a user ID.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (string, error)
}

// GetUserID extracts the authenticated user from the request context.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// BearerToken extracts the credential from an Authorization header, or ""
// when the header is missing or not a Bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserLoader returns middleware that authenticates /api requests and puts
// the user ID into the request context. Missing or invalid credentials
// get a 401 with a JSON body.
func UserLoader(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, "Missing Authorization header. Use Bearer <your-token>")
				return
			}

			userID, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				unauthorized(w, "Invalid or expired session token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
