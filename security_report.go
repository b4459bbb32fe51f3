package cookiejwt

import (
	"net/http"
	"time"

	"github.com/MrEthical07/cookiejwt/token"
)

// SecurityReport summarizes the protection a built storage actually applies.
// It never includes secret material.
type SecurityReport struct {
	Mode              string
	Downgraded        bool
	KeyAlgorithm      string
	ContentEncryption string
	SigningAlgorithm  string
	SecretCount       int
	CookieName        string
	Secure            bool
	HTTPOnly          bool
	SameSite          http.SameSite
	MaxAge            time.Duration
	Leeway            time.Duration
	IDStrategy        IDStrategy
	AuditEnabled      bool
	MetricsEnabled    bool
}

func (s *JWTCookieStorage) SecurityReport() SecurityReport {
	if s == nil {
		return SecurityReport{}
	}

	cfg := s.config
	report := SecurityReport{
		Mode:           s.codec.Mode().Name(),
		Downgraded:     token.Downgraded(cfg.Token.Encrypt, cfg.Token.Sign, cfg.Cookie.ActiveSecret()),
		SecretCount:    len(cfg.Cookie.Secrets),
		CookieName:     cfg.Cookie.Name,
		Secure:         cfg.Cookie.Secure,
		HTTPOnly:       cfg.Cookie.HTTPOnly,
		SameSite:       http.SameSite(cfg.Cookie.SameSite),
		MaxAge:         cfg.Cookie.MaxAge.Duration(),
		Leeway:         cfg.Token.Leeway.Duration(),
		IDStrategy:     cfg.Token.IDStrategy,
		AuditEnabled:   s.audit != nil,
		MetricsEnabled: s.metrics.Enabled(),
	}

	switch s.codec.Mode().(type) {
	case token.Encrypted:
		report.KeyAlgorithm = string(token.KeyAlgorithm)
		report.ContentEncryption = string(token.ContentEncryption)
	case token.Signed:
		report.SigningAlgorithm = "HS256"
	default:
		report.SigningAlgorithm = "none"
	}

	return report
}
