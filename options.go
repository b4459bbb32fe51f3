package cookiejwt

import (
	"net/http"
	"time"

	"github.com/MrEthical07/cookiejwt/cookie"
)

// CookieOption overrides a configured cookie attribute for a single call.
type CookieOption func(*callOptions)

type callOptions struct {
	cookie  cookie.Options
	expires *time.Time
}

// WithExpires sets the token expiry and the cookie's Expires attribute for a
// commit, taking precedence over the configured MaxAge.
func WithExpires(t time.Time) CookieOption {
	return func(o *callOptions) {
		o.expires = &t
	}
}

// WithMaxAge overrides the cookie's Max-Age attribute in seconds. It does not
// change the token expiry; use [WithExpires] for that.
func WithMaxAge(seconds int) CookieOption {
	return func(o *callOptions) {
		o.cookie.MaxAge = seconds
	}
}

func WithDomain(domain string) CookieOption {
	return func(o *callOptions) {
		o.cookie.Domain = domain
	}
}

func WithPath(path string) CookieOption {
	return func(o *callOptions) {
		o.cookie.Path = path
	}
}

func WithSecure(secure bool) CookieOption {
	return func(o *callOptions) {
		o.cookie.Secure = secure
	}
}

func WithHTTPOnly(httpOnly bool) CookieOption {
	return func(o *callOptions) {
		o.cookie.HTTPOnly = httpOnly
	}
}

func WithSameSite(mode http.SameSite) CookieOption {
	return func(o *callOptions) {
		o.cookie.SameSite = mode
	}
}

func WithPartitioned(partitioned bool) CookieOption {
	return func(o *callOptions) {
		o.cookie.Partitioned = partitioned
	}
}

// baseCookieOptions maps the configured cookie onto Set-Cookie attributes.
func baseCookieOptions(cfg CookieConfig) cookie.Options {
	return cookie.Options{
		Domain:      cfg.Domain,
		Path:        cfg.Path,
		MaxAge:      int(cfg.MaxAge.Seconds()),
		Secure:      cfg.Secure,
		HTTPOnly:    cfg.HTTPOnly,
		SameSite:    http.SameSite(cfg.SameSite),
		Partitioned: cfg.Partitioned,
	}
}

// mergeOptions applies call-site overrides on top of the configured defaults.
func mergeOptions(cfg CookieConfig, opts []CookieOption) callOptions {
	out := callOptions{cookie: baseCookieOptions(cfg)}
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}
