// Package app contains the application services and the composition root
// that wires them to a store.
//
// Responsibilities
//   - ItemService: the item lifecycle engine (create, partial update, toggle,
//     soft delete, restore, purge, due date, priority).
//   - ListService: list creation, lookup, listing by owner and rename.
//   - Authorizer: the one ownership check every operation goes through.
//   - Reaper: the periodic sweep that purges tombstones past the undo window.
//
// Files
// - application.go
//   - Application: holds the wired services and closes the store.
// - items.go, lists.go, authorizer.go, reaper.go
//   - One service each.
// - options.go
//   - Functional options shared by the constructors.
//
// Architectural notes
//   - Services only see ports. Storage, transport and identity live in
//     internal/adapters.
//   - Every mutating call is one ports.Store.Atomic unit; nothing commits
//     halfway.
package app
