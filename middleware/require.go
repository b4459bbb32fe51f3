package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/cookiejwt"
)

// TokenSource is implemented by [cookiejwt.JWTCookieStorage].
type TokenSource interface {
	GetJWT(ctx context.Context, cookieHeader string, opts ...cookiejwt.CookieOption) (string, bool)
}

// RequireToken rejects the request with 401 unless its session cookie holds a
// token that decodes under the storage's mode and secret. The raw token is
// available through [TokenFromContext].
func RequireToken(source TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tok, ok := source.GetJWT(requestContext(r), r.Header.Get("Cookie"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey{}, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireKey rejects the request with 401 unless the context session, loaded
// by [Session], has key set.
func RequireKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.Has(key) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
