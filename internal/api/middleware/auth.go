package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hugh/hoteldesk/internal/auth"
)

type contextKey string

const (
	UserEmailKey contextKey = "user_email"
)

// Auth requires a valid bearer token and stores its email claim in the
// request context.
func Auth(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				handleUnauthorized(w, "Chưa đăng nhập")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				handleUnauthorized(w, "Chưa đăng nhập")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				msg := "Token không hợp lệ"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Phiên đăng nhập đã hết hạn"
				}
				handleUnauthorized(w, msg)
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func handleUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}
