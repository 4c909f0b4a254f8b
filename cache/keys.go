package cache

// principalPrefix namespaces principal snapshots within the keyspace.
const principalPrefix = "user:"

// PrincipalKey returns the cache key for a principal identifier.
// Format: user:<id>
func PrincipalKey(id string) string {
	return principalPrefix + id
}
