package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cottons-kr/appplechat-api/internal/store"
)

// TokenResolver validates an access token and returns the canonical member
// record for it.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (store.Member, error)
}

// NewAuthMiddleware gates handlers behind a valid access token. The token is
// carried as the raw Authorization header value, without a scheme prefix.
// An absent or invalid token rejects the request before any upgrade, so a
// failed handshake never processes frames.
func NewAuthMiddleware(logger *slog.Logger, tokens TokenResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// couldn't extract metadata from request so something went wrong
			// with previous middlewares
			reqMeta, ok := ReqMetadataFrom(r.Context())
			if !ok {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				logger.Warn("Access token missing in request", slog.String("ip", reqMeta.IP))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			member, err := tokens.Resolve(r.Context(), tokenString)
			if err != nil {
				logger.Warn("Invalid access token presented",
					slog.String("ip", reqMeta.IP), slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			reqMeta.Token = tokenString
			reqMeta.Member = member
			next.ServeHTTP(w, r)
		})
	}
}
