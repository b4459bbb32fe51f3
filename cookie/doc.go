// Package cookie parses Cookie request headers and serializes Set-Cookie values.
//
// It is a thin layer over net/http's cookie codec with the attribute set the
// session storage needs.
package cookie
