package bg

// Sync is a Runner that executes functions on the calling goroutine.
type Sync struct{}

// Do runs fn and returns when it does.
func (Sync) Do(fn func()) {
	fn()
}
