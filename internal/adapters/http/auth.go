package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// The identity provider is external; the service only verifies its HS256
// session tokens and treats the subject claim as the opaque owner id.

type ownerIDContextKey struct{}

func ownerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ownerID, _ := ctx.Value(ownerIDContextKey{}).(string)
	return ownerID
}

func authMiddleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerIDFromBearer(r.Header.Get("Authorization"), secret)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDContextKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerIDFromBearer(headerValue, secret string) (string, bool) {
	headerValue = strings.TrimSpace(headerValue)
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", false
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	if tokenString == "" {
		return "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", false
	}
	return subject, true
}
