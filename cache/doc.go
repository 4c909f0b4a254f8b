// Package cache provides the identity cache: a TTL keyed store for
// serialized principal snapshots sitting in front of the durable store.
//
// The cache is a derived, disposable view. Implementations never error on
// Get; a miss, an expired entry, and an unreachable backend all look alike
// to the caller, which falls through to the source of truth.
package cache
