// Package adapters holds the concrete implementations of the ports in
// internal/ports.
//
// Layout follows data flow:
//
//   - inbound/httpapi     serves the JSON API and drives the app services
//   - outbound/postgres   stores lists and items in PostgreSQL and reads
//     identity-provider sessions
//   - outbound/inmemory   the same ports in process memory, for development
//     and tests
//   - outbound/identity   resolves the requesting user from proxy headers or
//     session cookies
//
// Domain and app code never import adapters; cmd/todoapi wires them.
package adapters
