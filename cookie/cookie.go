package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MaxCookieSize is the per-cookie byte budget browsers reliably accept for a
// full "name=value; attributes" string.
const MaxCookieSize = 4096

// ErrInvalidCookie is returned by [Serialize] when name, value or attributes
// cannot be represented in a Set-Cookie header.
var ErrInvalidCookie = errors.New("invalid cookie")

// Options are the Set-Cookie attributes written by [Serialize].
type Options struct {
	Domain string
	Path   string
	// MaxAge in seconds. Zero or negative omits the attribute.
	MaxAge int
	// Expires is omitted when zero.
	Expires     time.Time
	Secure      bool
	HTTPOnly    bool
	SameSite    http.SameSite
	Partitioned bool
}

// Parse returns the cookies in a Cookie request header keyed by name. Pairs
// that do not parse are skipped, and the first occurrence of a name wins.
func Parse(header string) map[string]string {
	out := make(map[string]string)
	if header == "" {
		return out
	}

	req := http.Request{Header: http.Header{"Cookie": {header}}}
	for _, c := range req.Cookies() {
		if _, seen := out[c.Name]; seen {
			continue
		}
		out[c.Name] = c.Value
	}
	return out
}

// Value returns the named cookie's value from a Cookie request header, or ""
// when it is absent.
func Value(header, name string) string {
	return Parse(header)[name]
}

// Serialize renders a Set-Cookie header value.
func Serialize(name, value string, opts Options) (string, error) {
	c := &http.Cookie{
		Name:        name,
		Value:       value,
		Domain:      opts.Domain,
		Path:        opts.Path,
		Expires:     opts.Expires,
		Secure:      opts.Secure,
		HttpOnly:    opts.HTTPOnly,
		SameSite:    opts.SameSite,
		Partitioned: opts.Partitioned,
	}
	if opts.MaxAge > 0 {
		c.MaxAge = opts.MaxAge
	}
	if err := c.Valid(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}
	return c.String(), nil
}
