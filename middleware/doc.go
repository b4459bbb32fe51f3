// Package middleware exposes net/http and gin adapters around a
// cookiejwt.Storage.
//
// # Loading
//
//   - [Session] reads the Cookie header once per request and stores the
//     session in the request context; [SessionFromContext] retrieves it.
//   - [RequireToken] rejects requests whose session cookie does not decode.
//   - [RequireKey] rejects requests whose session lacks a key.
//
// # Writing
//
// [Commit] and [Destroy] append a Set-Cookie header for the session found in
// the request context. Handlers call them before writing the response body.
//
// # Gin
//
// [GinSession], [GinSessionFrom], [GinCommit] and [GinDestroy] are the same
// operations for gin handlers.
package middleware
