// Package postgres implements the store and session ports on PostgreSQL.
//
// Queries are built with squirrel and executed through sqlx on lib/pq.
// Every Store.Atomic call is one READ COMMITTED transaction, and the
// GetForUpdate reads take a row lock (SELECT ... FOR UPDATE), so
// concurrent read-modify-write sequences on the same row serialize.
//
// The schema lives in migrations/ and is applied with sql-migrate. The
// session and "user" tables belong to the identity provider and are only
// read.
package postgres
