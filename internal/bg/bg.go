// Package bg decides how long-running loops such as the purge reaper are
// started.
//
// Async runs them on their own goroutine, which is what the server does.
// Sync runs them on the caller's goroutine, so a caller that owns its own
// goroutine (an errgroup, a test) can block on the loop directly.
package bg

// Runner executes fn, either on the current goroutine or on a new one.
type Runner interface {
	Do(fn func())
}
