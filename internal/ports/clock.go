package ports

import "time"

// Clock is the single source of "now" for timestamps and the undo window.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall-clock time in UTC, truncated to microseconds so
// values round-trip through PostgreSQL timestamps unchanged.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
