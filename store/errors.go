package store

import "errors"

// ErrNotFound reports a mutation aimed at a record that does not exist.
// Lookups signal absence with (nil, nil) instead.
var ErrNotFound = errors.New("store: record not found")

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations (duplicate email on the users table).
const uniqueViolation = "23505"
