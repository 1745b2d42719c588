package bg

// Async is a Runner that executes each function on a new goroutine.
type Async struct{}

// Do starts fn on a new goroutine and returns immediately.
func (Async) Do(fn func()) {
	go fn()
}
