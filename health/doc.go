// Package health provides liveness and readiness checks for the service's
// dependencies (PostgreSQL, Redis) and the HTTP handlers that expose them.
package health
