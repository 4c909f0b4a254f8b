// Package store is the durable store behind the authentication core and the
// CRUD surface: principals (users), projects, and comments on PostgreSQL.
//
// Lookup methods return (nil, nil) when no record matches; ErrNotFound is
// reserved for mutations aimed at a missing record. The users table's unique
// email index is the authoritative uniqueness check relied on by
// registration.
package store
