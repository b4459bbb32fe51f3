package cookiejwt

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/cookiejwt/cookie"
)

var (
	// ErrInvalidConfig is an exported constant or variable used by the session storage.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSecretRequired is returned by Build when Token.RequireSecret is set
	// and encryption or signing was requested without a secret.
	ErrSecretRequired = errors.New("secret required for encrypted or signed tokens")
	// ErrCookieTooLarge is matched by [*CookieSizeError].
	ErrCookieTooLarge = errors.New("cookie length will exceed browser maximum")
	// ErrNilSession is an exported constant or variable used by the session storage.
	ErrNilSession = errors.New("nil session")
	// ErrSessionEncode is returned by CommitSession when the token cannot be produced.
	ErrSessionEncode = errors.New("session encode failed")
	// ErrBuilderUsed is an exported constant or variable used by the session storage.
	ErrBuilderUsed = errors.New("builder already used")
)

// CookieSizeError reports a serialized cookie longer than [cookie.MaxCookieSize].
type CookieSizeError struct {
	Length int
}

func (e *CookieSizeError) Error() string {
	return fmt.Sprintf("%s. Length: %d", ErrCookieTooLarge.Error(), e.Length)
}

// Is lets errors.Is(err, ErrCookieTooLarge) match.
func (e *CookieSizeError) Is(target error) bool {
	return target == ErrCookieTooLarge
}

func checkCookieSize(serialized string) error {
	if n := len(serialized); n > cookie.MaxCookieSize {
		return &CookieSizeError{Length: n}
	}
	return nil
}
