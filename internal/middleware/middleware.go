// Package middleware holds the chi middlewares shared by every route.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

// RequestLogger stores a request-scoped logger in the context and logs
// each completed request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := logger.L().With(
			logger.RequestID(chimw.GetReqID(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
		)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), l)))

		l.Info("request",
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
		)
	})
}

// TokenParser turns a bearer token into an identity.
type TokenParser interface {
	Parse(raw string) (model.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by Authenticate.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(model.Identity)
	return id, ok
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				logger.From(r.Context()).Debug("rejected token", logger.Err(err))
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(id.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
