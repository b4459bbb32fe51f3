package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/MrEthical07/cookiejwt"
)

// ErrNoSession is returned by [Commit] and [Destroy] when the request did not
// pass through [Session].
var ErrNoSession = errors.New("middleware: no session in request context")

type sessionContextKey struct{}
type tokenContextKey struct{}

func SessionFromContext(ctx context.Context) (*cookiejwt.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*cookiejwt.Session)
	return sess, ok && sess != nil
}

// TokenFromContext returns the raw token stored by [RequireToken].
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenContextKey{}).(string)
	return tok, ok && tok != ""
}

// Session loads the session from the request's Cookie header into the
// request context. A missing or invalid cookie yields an empty session, so
// the wrapped handler always runs.
func Session(storage cookiejwt.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if storage == nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := requestContext(r)
			sess, err := storage.GetSession(ctx, r.Header.Get("Cookie"))
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Commit writes a Set-Cookie header persisting the context session.
func Commit(w http.ResponseWriter, r *http.Request, storage cookiejwt.Storage, opts ...cookiejwt.CookieOption) error {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return ErrNoSession
	}
	value, err := storage.CommitSession(requestContext(r), sess, opts...)
	if err != nil {
		return err
	}
	w.Header().Add("Set-Cookie", value)
	return nil
}

// Destroy writes a Set-Cookie header clearing the session cookie. It works
// without [Session] in the chain.
func Destroy(w http.ResponseWriter, r *http.Request, storage cookiejwt.Storage, opts ...cookiejwt.CookieOption) error {
	sess, _ := SessionFromContext(r.Context())
	value, err := storage.DestroySession(requestContext(r), sess, opts...)
	if err != nil {
		return err
	}
	w.Header().Add("Set-Cookie", value)
	return nil
}

// requestContext attaches the peer address for audit events.
func requestContext(r *http.Request) context.Context {
	return cookiejwt.WithClientIP(r.Context(), clientIP(r.RemoteAddr))
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
