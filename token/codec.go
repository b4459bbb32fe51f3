package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// KeyAlgorithm is the JWE key management algorithm used by [Encrypted].
	KeyAlgorithm = jose.PBES2_HS256_A128KW
	// ContentEncryption is the JWE content encryption algorithm used by [Encrypted].
	ContentEncryption = jose.A256GCM
	// PBES2Count is the PBES2 iteration count stamped into every encrypted
	// token and the highest p2c header Decode accepts.
	PBES2Count = 10000
)

var (
	// ErrInvalidToken wraps every decode failure: malformed input, bad
	// signature or tag, algorithm mismatch and expired claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when a protected mode has no key material.
	ErrEmptySecret = errors.New("empty secret")
)

// Claims is the token payload. Session data always lives under "data".
type Claims struct {
	Data map[string]any `json:"data"`
	jwt.RegisteredClaims
}

// Option customizes a [Codec].
type Option func(*Codec)

// WithLeeway tolerates clock skew when checking exp.
func WithLeeway(d time.Duration) Option {
	return func(c *Codec) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// WithTokenID stamps every encoded token with a random jti claim.
func WithTokenID(enabled bool) Option {
	return func(c *Codec) {
		c.tokenID = enabled
	}
}

// WithClock overrides the time source used for iat and exp checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec turns session data into a token string and back under a fixed [Mode].
//
// A Codec holds no mutable state after construction and is safe for
// concurrent use.
type Codec struct {
	mode    Mode
	leeway  time.Duration
	tokenID bool
	now     func() time.Time
}

// NewCodec builds a Codec. A nil mode is treated as [Unsecured].
func NewCodec(mode Mode, opts ...Option) *Codec {
	if mode == nil {
		mode = Unsecured{}
	}
	c := &Codec{mode: mode, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the mode the codec was built with.
func (c *Codec) Mode() Mode {
	return c.mode
}

// Encode wraps data in claims, stamps iat, sets exp when expiry is non-nil,
// and serializes the result under the codec's mode.
func (c *Codec) Encode(data map[string]any, expiry *time.Time) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	claims := Claims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	if expiry != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiry)
	}
	if c.tokenID {
		claims.ID = uuid.NewString()
	}

	switch m := c.mode.(type) {
	case Encrypted:
		return encrypt(m.secret, claims)
	case Signed:
		if len(m.secret) == 0 {
			return "", ErrEmptySecret
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	default:
		return jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	}
}

// Decode verifies tok under the codec's mode and returns its claims. Every
// failure wraps [ErrInvalidToken].
func (c *Codec) Decode(tok string) (*Claims, error) {
	var (
		claims *Claims
		err    error
	)
	switch m := c.mode.(type) {
	case Encrypted:
		claims, err = c.decrypt(m.secret, tok)
	case Signed:
		claims, err = c.parse(tok, jwt.SigningMethodHS256, m.secret)
	default:
		claims, err = c.parse(tok, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Data == nil {
		claims.Data = map[string]any{}
	}
	return claims, nil
}

// DecodeData is Decode reduced to the session data. A false result means the
// token is not a valid session for this codec; the reason is discarded.
func (c *Codec) DecodeData(tok string) (map[string]any, bool) {
	claims, err := c.Decode(tok)
	if err != nil {
		return nil, false
	}
	return claims.Data, true
}

// IsExpired reports whether a Decode error was caused by the exp claim.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// LastSegment returns the final dot-delimited segment of tok: the signature
// for signed tokens, the authentication tag for encrypted ones and an empty
// string for unsecured ones.
func LastSegment(tok string) string {
	if i := strings.LastIndexByte(tok, '.'); i >= 0 {
		return tok[i+1:]
	}
	return tok
}

func (c *Codec) parserOptions(alg string) []jwt.ParserOption {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	}
	if c.leeway > 0 {
		options = append(options, jwt.WithLeeway(c.leeway))
	}
	return options
}

func (c *Codec) parse(tok string, method jwt.SigningMethod, key interface{}) (*Claims, error) {
	if method == jwt.SigningMethodHS256 {
		if b, ok := key.([]byte); !ok || len(b) == 0 {
			return nil, ErrEmptySecret
		}
	}

	parser := jwt.NewParser(c.parserOptions(method.Alg())...)
	parsed, err := parser.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func encrypt(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	enc, err := jose.NewEncrypter(
		ContentEncryption,
		jose.Recipient{Algorithm: KeyAlgorithm, Key: secret, PBES2Count: PBES2Count},
		(&jose.EncrypterOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("create encrypter: %w", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	obj, err := enc.Encrypt(payload)
	if err != nil {
		return "", fmt.Errorf("encrypt claims: %w", err)
	}
	return obj.CompactSerialize()
}

func (c *Codec) decrypt(secret []byte, tok string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	obj, err := jose.ParseEncryptedCompact(
		tok,
		[]jose.KeyAlgorithm{KeyAlgorithm},
		[]jose.ContentEncryption{ContentEncryption},
	)
	if err != nil {
		return nil, err
	}
	// p2c is unauthenticated; check it before deriving the key.
	if err := checkPBES2Count(obj.Header.ExtraHeaders[jose.HeaderKey("p2c")]); err != nil {
		return nil, err
	}

	payload, err := obj.Decrypt(secret)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", jwt.ErrTokenMalformed, err)
	}

	// The JWE layer carries no claim checks of its own.
	validator := jwt.NewValidator(c.parserOptions(string(KeyAlgorithm))...)
	if err := validator.Validate(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func checkPBES2Count(v any) error {
	n, ok := v.(float64)
	if !ok {
		return errors.New("p2c header missing or not a number")
	}
	if n < 1 || n > PBES2Count {
		return fmt.Errorf("p2c %v outside 1..%d", n, PBES2Count)
	}
	return nil
}
