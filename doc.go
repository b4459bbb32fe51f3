// Package cookiejwt stores HTTP sessions entirely inside a cookie as a signed
// or encrypted token.
//
// [JWTCookieStorage] implements the generic [Storage] contract: GetSession
// reads a Cookie request header and returns a [Session], CommitSession turns a
// session back into a Set-Cookie value, and DestroySession returns a
// Set-Cookie value that expires the cookie. GetJWT additionally exposes the
// validated raw token.
//
// # Security modes
//
// The token mode is chosen once at [Builder.Build] from Token.Encrypt,
// Token.Sign and Cookie.Secrets[0]:
//
//   - encrypted: JWE (PBES2-HS256+A128KW, A256GCM); confidentiality and integrity.
//   - signed: JWS HS256; integrity only, payload readable by the client.
//   - unsecured: alg "none"; no protection.
//
// Requesting encryption or signing without a secret silently selects the
// unsecured mode and logs a warning at build. Set Token.RequireSecret to make
// that a build error instead.
//
// # Architecture boundaries
//
// Token encoding lives in package token and cookie syntax in package cookie.
// This package wires them to configuration, metrics, audit and logging.
//
// # What this package must NOT do
//
//   - Keep server-side session state. Destroying a session cannot revoke a
//     token that was copied before it expired.
//   - Split oversized sessions across several cookies. A Set-Cookie value
//     over 4096 bytes is a [*CookieSizeError].
//   - Verify tokens against any secret but Secrets[0].
package cookiejwt
