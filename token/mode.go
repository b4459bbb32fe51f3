package token

// Mode is the security mode a [Codec] encodes and decodes under.
//
// Mode is a closed set: [Encrypted], [Signed] and [Unsecured] are the only
// implementations. It is selected once, normally through [SelectMode], and is
// immutable afterwards.
type Mode interface {
	// Name returns the stable identifier used in logs and config lint output.
	Name() string
	isMode()
}

// Encrypted provides confidentiality and integrity. The payload is wrapped in
// a compact JWE using a PBES2 key derived from the secret.
type Encrypted struct {
	secret []byte
}

// Signed provides integrity only. The payload is readable but tamper-evident
// through an HS256 signature keyed by the secret.
type Signed struct {
	secret []byte
}

// Unsecured carries no cryptographic protection.
type Unsecured struct{}

// NewEncrypted returns an Encrypted mode keyed by the UTF-8 bytes of secret.
func NewEncrypted(secret string) Encrypted {
	return Encrypted{secret: []byte(secret)}
}

// NewSigned returns a Signed mode keyed by the UTF-8 bytes of secret.
func NewSigned(secret string) Signed {
	return Signed{secret: []byte(secret)}
}

func (Encrypted) Name() string { return "encrypted" }
func (Signed) Name() string    { return "signed" }
func (Unsecured) Name() string { return "unsecured" }

func (Encrypted) isMode() {}
func (Signed) isMode()    {}
func (Unsecured) isMode() {}

// SelectMode picks the mode for a configuration. Protection is secret-gated:
// a requested mode without a secret falls back to [Unsecured]. When both
// encrypt and sign are requested, encryption wins.
func SelectMode(encrypt, sign bool, secret string) Mode {
	switch {
	case encrypt && secret != "":
		return NewEncrypted(secret)
	case sign && secret != "":
		return NewSigned(secret)
	default:
		return Unsecured{}
	}
}

// Downgraded reports whether SelectMode would fall back to [Unsecured] even
// though protection was requested.
func Downgraded(encrypt, sign bool, secret string) bool {
	return (encrypt || sign) && secret == ""
}
