//go:build !debug

// Package assert checks internal invariants. Built with -tags debug a
// violation panics; otherwise every check compiles to nothing.
package assert

// Invariant is a no-op outside debug builds.
func Invariant(bool, string, ...any) {}
