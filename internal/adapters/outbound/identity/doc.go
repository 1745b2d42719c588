// Package identity resolves the user behind an HTTP request.
//
// Two sources are supported: X-User-* headers set by a trusted frontend
// proxy, and identity-provider session cookies looked up through a
// ports.SessionStore. Chain combines them in order.
package identity
