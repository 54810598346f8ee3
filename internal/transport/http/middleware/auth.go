package httpmw

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/security"
)

type ctxKey string

const (
	ctxKeyToken  ctxKey = "token"
	ctxKeyUserID ctxKey = "user_id"
)

// AuthMiddleware: требуем Bearer + X-User-ID. Если verifier задан,
// токен проверяется (RS256, выпускает auth-service) и user id берётся
// из sub; иначе доверяем заголовку (режим за gateway'ем).
func AuthMiddleware(verifier *security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(auth[7:])

			var uid int64
			if verifier != nil {
				claims, err := verifier.ParseAndValidate(token)
				if err != nil {
					http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
					return
				}
				id, err := security.SubjectAsUserID(claims)
				if err != nil {
					http.Error(w, `{"error":"invalid token subject"}`, http.StatusUnauthorized)
					return
				}
				uid = int64(id)
			} else {
				uidHeader := r.Header.Get("X-User-ID")
				if uidHeader == "" {
					http.Error(w, `{"error":"missing X-User-ID"}`, http.StatusUnauthorized)
					return
				}
				id, err := strconv.ParseInt(uidHeader, 10, 64)
				if err != nil || id <= 0 {
					http.Error(w, `{"error":"invalid X-User-ID (must be int64)"}`, http.StatusUnauthorized)
					return
				}
				uid = id
			}

			ctx := context.WithValue(r.Context(), ctxKeyToken, token)
			ctx = context.WithValue(ctx, ctxKeyUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromCtx(ctx context.Context) domain.UserID {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if id, ok := v.(int64); ok {
			return domain.UserID(id)
		}
	}

	return 0
}
