// Package auth provides the authentication and authorization core for collabd.
//
// It covers token issuance and verification (signed, time-bound JWTs),
// cache-first principal resolution backed by a durable directory, and the
// per-request access decision pipeline (public-route classification, bearer
// extraction, principal attachment, role enforcement). The package is
// transport-thin: the guard is plain net/http middleware and everything else
// is usable without HTTP.
package auth
