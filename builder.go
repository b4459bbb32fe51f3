package cookiejwt

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/cookiejwt/token"
)

// Builder assembles a JWTCookieStorage. A Builder can be built once.
type Builder struct {
	config    Config
	logger    zerolog.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCookie replaces the cookie section of the configuration.
func (b *Builder) WithCookie(c CookieConfig) *Builder {
	c.Secrets = cloneStrings(c.Secrets)
	b.config.Cookie = c
	return b
}

// WithEncryption requests encrypted tokens. Without a secret the storage
// falls back to unsecured tokens unless Token.RequireSecret is set.
func (b *Builder) WithEncryption(enabled bool) *Builder {
	b.config.Token.Encrypt = enabled
	return b
}

// WithSigning requests signed tokens. The same secret gating as
// [Builder.WithEncryption] applies.
func (b *Builder) WithSigning(enabled bool) *Builder {
	b.config.Token.Sign = enabled
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets where audit events go when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms records encode and decode latency. It has no
// effect unless metrics are enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the time source for iat, exp and cookie expiry.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready storage. A Builder
// can be built once.
func (b *Builder) Build() (*JWTCookieStorage, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if cfg.Token.IDStrategy == "" {
		cfg.Token.IDStrategy = IDFromSignature
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	mode := cfg.Mode()
	if token.Downgraded(cfg.Token.Encrypt, cfg.Token.Sign, cfg.Cookie.ActiveSecret()) {
		b.logger.Warn().
			Bool("encrypt", cfg.Token.Encrypt).
			Bool("sign", cfg.Token.Sign).
			Str("cookie", cfg.Cookie.Name).
			Msg("cookiejwt: no secret configured, issuing unsecured session tokens")
	}

	codec := token.NewCodec(mode,
		token.WithLeeway(cfg.Token.Leeway.Duration()),
		token.WithTokenID(cfg.Token.IDStrategy == IDFromTokenID),
		token.WithClock(now),
	)

	storage := &JWTCookieStorage{
		config:  cfg,
		codec:   codec,
		logger:  b.logger,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		now:     now,
	}

	b.logger.Debug().
		Str("cookie", cfg.Cookie.Name).
		Str("mode", mode.Name()).
		Str("id_strategy", string(cfg.Token.IDStrategy)).
		Msg("cookiejwt: session storage built")

	b.built = true

	return storage, nil
}
