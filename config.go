package cookiejwt

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/cookiejwt/cookie"
	"github.com/MrEthical07/cookiejwt/token"
)

// Config defines a public type used by cookiejwt APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie  CookieConfig  `toml:"cookie" yaml:"cookie"`
	Token   TokenConfig   `toml:"token" yaml:"token"`
	Audit   AuditConfig   `toml:"audit" yaml:"audit"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig describes the session cookie and the secrets protecting it.
//
// Only Secrets[0] is used, for both issuing and verifying tokens. Later
// entries are accepted so configuration files can stage a rotation, but they
// are never consulted.
type CookieConfig struct {
	Name        string   `toml:"name" yaml:"name"`
	Domain      string   `toml:"domain" yaml:"domain"`
	Path        string   `toml:"path" yaml:"path"`
	MaxAge      Duration `toml:"max_age" yaml:"max_age"`
	Secure      bool     `toml:"secure" yaml:"secure"`
	HTTPOnly    bool     `toml:"http_only" yaml:"http_only"`
	SameSite    SameSite `toml:"same_site" yaml:"same_site"`
	Partitioned bool     `toml:"partitioned" yaml:"partitioned"`
	Secrets     []string `toml:"secrets" yaml:"secrets"`
}

// ActiveSecret returns the secret used for new and incoming tokens.
func (c CookieConfig) ActiveSecret() string {
	if len(c.Secrets) == 0 {
		return ""
	}
	return c.Secrets[0]
}

/*
====================================
TOKEN CONFIG
====================================
*/

// IDStrategy selects how a loaded session's identifier is derived.
type IDStrategy string

const (
	// IDFromSignature uses the last dot-delimited token segment. Unsecured
	// tokens have an empty last segment, so their sessions have no ID.
	IDFromSignature IDStrategy = "signature"
	// IDFromTokenID stamps every committed token with a random jti claim and
	// uses it as the session ID.
	IDFromTokenID IDStrategy = "jti"
)

// TokenConfig selects the token security mode.
type TokenConfig struct {
	Encrypt    bool       `toml:"encrypt" yaml:"encrypt"`
	Sign       bool       `toml:"sign" yaml:"sign"`
	Leeway     Duration   `toml:"leeway" yaml:"leeway"`
	IDStrategy IDStrategy `toml:"id_strategy" yaml:"id_strategy"`
	// RequireSecret turns the silent downgrade to unsecured tokens into a
	// build error when Encrypt or Sign is set without a secret.
	RequireSecret bool `toml:"require_secret" yaml:"require_secret"`
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `toml:"enabled" yaml:"enabled"`
	BufferSize int  `toml:"buffer_size" yaml:"buffer_size"`
	DropIfFull bool `toml:"drop_if_full" yaml:"drop_if_full"`
}

// MetricsConfig defines a public type used by cookiejwt APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `toml:"enabled" yaml:"enabled"`
	EnableLatencyHistograms bool `toml:"enable_latency_histograms" yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Cookie.Name and a secret
// still have to be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Path:     "/",
			HTTPOnly: true,
			SameSite: SameSite(http.SameSiteLaxMode),
		},
		Token: TokenConfig{
			IDStrategy: IDFromSignature,
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Cookie.Secrets = cloneStrings(cfg.Cookie.Secrets)
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks that the configuration can build a storage. It never
// inspects secret contents beyond emptiness.
func (c *Config) Validate() error {
	name := c.Cookie.Name
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: Cookie Name is required", ErrInvalidConfig)
	}
	if _, err := cookie.Serialize(name, "", cookie.Options{}); err != nil {
		return fmt.Errorf("%w: Cookie Name %q is not a valid cookie name", ErrInvalidConfig, name)
	}
	if c.Cookie.MaxAge < 0 {
		return fmt.Errorf("%w: Cookie MaxAge must be >= 0", ErrInvalidConfig)
	}
	if c.Cookie.MaxAge.Duration()%time.Second != 0 {
		return fmt.Errorf("%w: Cookie MaxAge must be a whole number of seconds", ErrInvalidConfig)
	}
	switch http.SameSite(c.Cookie.SameSite) {
	case 0, http.SameSiteDefaultMode, http.SameSiteLaxMode, http.SameSiteStrictMode:
	case http.SameSiteNoneMode:
		if !c.Cookie.Secure {
			return fmt.Errorf("%w: SameSite=None requires Secure", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: Cookie SameSite is invalid", ErrInvalidConfig)
	}
	if c.Cookie.Partitioned && !c.Cookie.Secure {
		return fmt.Errorf("%w: Partitioned requires Secure", ErrInvalidConfig)
	}
	for i, s := range c.Cookie.Secrets {
		if s == "" {
			return fmt.Errorf("%w: Cookie Secrets[%d] is empty", ErrInvalidConfig, i)
		}
	}

	if c.Token.Leeway < 0 || c.Token.Leeway.Duration() > 5*time.Minute {
		return fmt.Errorf("%w: Token Leeway must be between 0 and 5m", ErrInvalidConfig)
	}
	switch c.Token.IDStrategy {
	case "", IDFromSignature, IDFromTokenID:
	default:
		return fmt.Errorf("%w: Token IDStrategy %q is unsupported", ErrInvalidConfig, c.Token.IDStrategy)
	}
	if c.Token.RequireSecret && token.Downgraded(c.Token.Encrypt, c.Token.Sign, c.Cookie.ActiveSecret()) {
		return ErrSecretRequired
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit BufferSize must be > 0 when enabled", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: Metrics EnableLatencyHistograms requires Metrics Enabled", ErrInvalidConfig)
	}

	return nil
}

// Mode returns the token mode this configuration selects.
func (c *Config) Mode() token.Mode {
	return token.SelectMode(c.Token.Encrypt, c.Token.Sign, c.Cookie.ActiveSecret())
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal configuration finding.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but probably not what a production
// deployment wants.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	secret := c.Cookie.ActiveSecret()
	if token.Downgraded(c.Token.Encrypt, c.Token.Sign, secret) {
		add("mode_downgraded", "Encrypt or Sign requested without a secret; tokens are issued unsecured")
	}
	if !c.Token.Encrypt && !c.Token.Sign {
		add("unsecured_tokens", "neither Encrypt nor Sign is set; session data is unprotected")
	}
	if c.Token.Encrypt && c.Token.Sign {
		add("encrypt_and_sign", "Encrypt and Sign both set; Encrypt takes precedence")
	}
	if secret != "" && len(secret) < 32 {
		add("short_secret", "active secret is shorter than 32 bytes")
	}
	if len(c.Cookie.Secrets) > 1 {
		add("secrets_not_rotated", "only Secrets[0] is used; older secrets do not verify existing cookies")
	}
	if !c.Cookie.Secure {
		add("cookie_not_secure", "Secure is not set; the cookie is sent over plain HTTP")
	}
	if !c.Cookie.HTTPOnly {
		add("cookie_not_http_only", "HttpOnly is not set; scripts can read the session token")
	}
	if c.Cookie.MaxAge == 0 {
		add("session_cookie", "MaxAge is 0; tokens carry no expiry and live as long as the browser session")
	}
	if c.Token.Leeway.Duration() > time.Minute {
		add("leeway_large", "Token Leeway exceeds one minute")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", "session lifecycle events are not audited")
	}

	return ws
}
