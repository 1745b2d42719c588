//go:build debug

// Package assert checks internal invariants. Built with -tags debug a
// violation panics; otherwise every check compiles to nothing.
package assert

import "fmt"

// Invariant panics with the formatted message when ok is false.
// Use it for states the item lifecycle must never reach, not for input
// validation.
func Invariant(ok bool, format string, args ...any) {
	if !ok {
		panic("INVARIANT VIOLATION: " + fmt.Sprintf(format, args...))
	}
}
