package cookiejwt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/cookiejwt/cookie"
	"github.com/MrEthical07/cookiejwt/token"
)

// Storage is the generic session-storage contract: load a session from a
// Cookie request header, and render Set-Cookie values that persist or
// destroy it.
type Storage interface {
	GetSession(ctx context.Context, cookieHeader string, opts ...CookieOption) (*Session, error)
	CommitSession(ctx context.Context, s *Session, opts ...CookieOption) (string, error)
	DestroySession(ctx context.Context, s *Session, opts ...CookieOption) (string, error)
}

// JWTCookieStorage keeps the whole session inside the cookie as a token.
// There is no server-side state: destroying a session only instructs the
// client to drop the cookie, and a copied token stays valid until it expires.
//
// JWTCookieStorage methods are safe to call from multiple goroutines after
// [Builder.Build].
type JWTCookieStorage struct {
	config  Config
	codec   *token.Codec
	logger  zerolog.Logger
	metrics *Metrics
	audit   *auditDispatcher
	now     func() time.Time
}

var _ Storage = (*JWTCookieStorage)(nil)

// GetSession returns the session stored in the configured cookie. A missing,
// expired, tampered or malformed cookie yields a fresh empty session with an
// empty ID; GetSession never fails because of cookie contents.
//
// opts are accepted for contract compatibility; reading only depends on the
// configured cookie name.
func (s *JWTCookieStorage) GetSession(ctx context.Context, cookieHeader string, opts ...CookieOption) (*Session, error) {
	raw := cookie.Value(cookieHeader, s.config.Cookie.Name)
	claims, ok := s.decode(ctx, raw)
	if !ok {
		return NewSession(nil, ""), nil
	}
	return NewSession(claims.Data, s.sessionID(raw, claims)), nil
}

// GetJWT returns the raw token from the configured cookie if, and only if, it
// decodes under the storage's mode and secret.
func (s *JWTCookieStorage) GetJWT(ctx context.Context, cookieHeader string, opts ...CookieOption) (string, bool) {
	raw := cookie.Value(cookieHeader, s.config.Cookie.Name)
	if _, ok := s.decode(ctx, raw); !ok {
		return "", false
	}
	return raw, true
}

// CommitSession encodes the session into a token and returns the Set-Cookie
// value carrying it.
//
// The token expiry is the WithExpires option when given, otherwise now plus
// Cookie.MaxAge. With MaxAge 0 the token has no exp claim and the cookie is a
// browser-session cookie, not one that expires at the Unix epoch: a storage
// configured with only a name and a secret must still read back what it
// commits. Pass WithExpires for an explicit expiry. A serialized cookie
// longer than 4096 bytes fails with [*CookieSizeError]; nothing is truncated.
func (s *JWTCookieStorage) CommitSession(ctx context.Context, sess *Session, opts ...CookieOption) (string, error) {
	if sess == nil {
		return "", ErrNilSession
	}

	o := mergeOptions(s.config.Cookie, opts)
	expiry := o.expires
	if expiry == nil && s.config.Cookie.MaxAge > 0 {
		t := s.now().Add(s.config.Cookie.MaxAge.Duration())
		expiry = &t
	}
	if expiry != nil {
		o.cookie.Expires = *expiry
	}

	start := time.Now()
	tok, err := s.codec.Encode(sess.data, expiry)
	s.metrics.Observe(MetricEncodeLatency, time.Since(start))
	if err != nil {
		s.metrics.Inc(MetricSessionCommitFailed)
		s.logger.Error().Err(err).Str("mode", s.codec.Mode().Name()).Msg("cookiejwt: session encode failed")
		return "", fmt.Errorf("%w: %w", ErrSessionEncode, err)
	}

	serialized, err := cookie.Serialize(s.config.Cookie.Name, tok, o.cookie)
	if err != nil {
		s.metrics.Inc(MetricSessionCommitFailed)
		return "", err
	}
	if err := checkCookieSize(serialized); err != nil {
		s.metrics.Inc(MetricSessionCommitOversize)
		s.logger.Warn().Int("length", len(serialized)).Int("limit", cookie.MaxCookieSize).Msg("cookiejwt: session cookie too large")
		s.emitAudit(ctx, auditEventCommitOversize, false, sess.id, err, map[string]string{
			"length": fmt.Sprint(len(serialized)),
		})
		return "", err
	}

	s.metrics.Inc(MetricSessionCommitted)
	s.emitAudit(ctx, auditEventCommitted, true, sess.id, nil, nil)
	return serialized, nil
}

// DestroySession returns a Set-Cookie value that clears the configured
// cookie: an empty value expiring at the Unix epoch. The session's content is
// ignored.
func (s *JWTCookieStorage) DestroySession(ctx context.Context, sess *Session, opts ...CookieOption) (string, error) {
	o := mergeOptions(s.config.Cookie, opts)
	o.cookie.MaxAge = 0
	o.cookie.Expires = time.Unix(0, 0).UTC()

	serialized, err := cookie.Serialize(s.config.Cookie.Name, "", o.cookie)
	if err != nil {
		return "", err
	}

	var id string
	if sess != nil {
		id = sess.id
	}
	s.metrics.Inc(MetricSessionDestroyed)
	s.emitAudit(ctx, auditEventDestroyed, true, id, nil, nil)
	return serialized, nil
}

// Mode returns the token mode selected at build time.
func (s *JWTCookieStorage) Mode() token.Mode {
	return s.codec.Mode()
}

// CookieName returns the configured cookie name.
func (s *JWTCookieStorage) CookieName() string {
	return s.config.Cookie.Name
}

// MetricsSnapshot returns the current counters and histograms.
func (s *JWTCookieStorage) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (s *JWTCookieStorage) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. Other methods keep working
// after Close; audit events are no longer delivered.
func (s *JWTCookieStorage) Close() {
	s.audit.Close()
}

func (s *JWTCookieStorage) decode(ctx context.Context, raw string) (*token.Claims, bool) {
	if raw == "" {
		s.metrics.Inc(MetricSessionAbsent)
		return nil, false
	}

	start := time.Now()
	claims, err := s.codec.Decode(raw)
	s.metrics.Observe(MetricDecodeLatency, time.Since(start))
	if err != nil {
		s.metrics.Inc(MetricSessionRejected)
		s.logger.Debug().Err(err).Str("mode", s.codec.Mode().Name()).Msg("cookiejwt: session token rejected")
		s.emitAudit(ctx, auditEventRejected, false, "", err, nil)
		return nil, false
	}

	s.metrics.Inc(MetricSessionLoaded)
	return claims, true
}

func (s *JWTCookieStorage) sessionID(raw string, claims *token.Claims) string {
	if s.config.Token.IDStrategy == IDFromTokenID {
		return claims.ID
	}
	return token.LastSegment(raw)
}
