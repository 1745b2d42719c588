// Package inmemory provides process-local implementations of the store and
// session ports for development mode and tests.
//
// Transactions are serialized by one mutex and run against a staged copy of
// the data; the copy replaces the committed state only when the unit of
// work returns nil.
package inmemory
