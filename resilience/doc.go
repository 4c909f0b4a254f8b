// Package resilience provides failure isolation for optional backends.
//
// The service treats the identity cache as disposable: when Redis is down
// the resolver falls through to PostgreSQL and keeps working. Without
// isolation, though, every request still pays a connection attempt to the
// dead backend. The circuit breaker here cuts that cost: after a run of
// failures it opens and callers skip the backend entirely until a probe
// succeeds.
//
//	br := resilience.NewBreaker(resilience.BreakerConfig{})
//	if br.Allow() {
//	    err := touchBackend(ctx)
//	    br.Record(err)
//	}
package resilience
