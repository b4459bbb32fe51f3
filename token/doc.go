// Package token encodes session data into compact token strings and decodes
// them back under one of three security modes.
//
// # Modes
//
//   - [Encrypted]: compact JWE, PBES2-HS256+A128KW key wrap, A256GCM content encryption.
//   - [Signed]: compact JWS, HS256.
//   - [Unsecured]: alg "none", empty signature segment.
//
// Every token carries a "data" claim holding the session map and an "iat"
// claim. "exp" is present only when the caller supplies an expiry.
//
// # What this package must NOT do
//
//   - Parse or write cookies (see package cookie).
//   - Surface decode failure reasons past [ErrInvalidToken]; callers treat any
//     failure as "no valid session".
package token
