package cookiejwt_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/MrEthical07/cookiejwt"
	"github.com/MrEthical07/cookiejwt/middleware"
)

// Guards the exported surface against accidental signature changes.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = cookiejwt.New
	_ = cookiejwt.LoadConfigFile

	var _ cookiejwt.Storage = (*cookiejwt.JWTCookieStorage)(nil)
	var _ cookiejwt.Config
	var _ cookiejwt.AuditSink
	var _ cookiejwt.SecurityReport

	var _ error = cookiejwt.ErrInvalidConfig
	var _ error = cookiejwt.ErrSecretRequired
	var _ error = cookiejwt.ErrCookieTooLarge
	var _ error = &cookiejwt.CookieSizeError{}

	var _ func(cookiejwt.Storage) func(http.Handler) http.Handler = middleware.Session
	var _ func(middleware.TokenSource) func(http.Handler) http.Handler = middleware.RequireToken
	var _ func(string) func(http.Handler) http.Handler = middleware.RequireKey

	var _ func(*cookiejwt.JWTCookieStorage, context.Context, string, ...cookiejwt.CookieOption) (*cookiejwt.Session, error) = (*cookiejwt.JWTCookieStorage).GetSession
	var _ func(*cookiejwt.JWTCookieStorage, context.Context, string, ...cookiejwt.CookieOption) (string, bool) = (*cookiejwt.JWTCookieStorage).GetJWT
	var _ func(*cookiejwt.JWTCookieStorage, context.Context, *cookiejwt.Session, ...cookiejwt.CookieOption) (string, error) = (*cookiejwt.JWTCookieStorage).CommitSession
	var _ func(*cookiejwt.JWTCookieStorage, context.Context, *cookiejwt.Session, ...cookiejwt.CookieOption) (string, error) = (*cookiejwt.JWTCookieStorage).DestroySession
}
