//go:build debug

package assert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvariant(t *testing.T) {
	assert.NotPanics(t, func() { Invariant(true, "never shown") })

	assert.PanicsWithValue(t, "INVARIANT VIOLATION: item 7 has status \"done\"", func() {
		Invariant(false, "item %d has status %q", 7, "done")
	})
}
