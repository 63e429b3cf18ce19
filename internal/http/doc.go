// Package http exposes the content sync facade as a JSON API on echo. The
// caller's role is read from the host's session cookie; the package never
// authenticates.
package http
