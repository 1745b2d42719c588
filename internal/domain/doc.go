// Package domain holds the TODO list model: lists, items, their field types
// and the rules every transition must respect.
//
// Boundaries:
//   - No I/O, no transport, no persistence. Time is always passed in by the
//     caller so the undo window can be evaluated against a single clock.
//   - Errors are sentinels (see errors.go). Callers classify them with
//     KindOf and never inspect message text.
//
// Partial updates use Field[T], a tri-state value (absent, null, set). An
// absent field leaves the stored value untouched; null clears it; set
// replaces it. A plain pointer cannot express the first case, so ItemPatch
// never uses one.
package domain
