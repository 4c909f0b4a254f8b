// Package api is the HTTP boundary: the chi router, the CRUD handlers for
// users, projects, and comments, the websocket comment gateway, and the
// middleware stack (telemetry, recovery, rate limiting, then the access
// guard). It maps the core's typed errors onto HTTP statuses.
package api
