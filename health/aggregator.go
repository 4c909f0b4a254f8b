package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Aggregator runs a set of checkers and combines their results.
type Aggregator struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{checkers: make(map[string]Checker)}
}

// Register adds a checker. A checker with the same name is replaced.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	a.checkers[c.Name()] = c
	a.mu.Unlock()
}

// Check runs a single named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("health: no checker named %q", name)
	}
	return runCheck(ctx, c), nil
}

// CheckAll runs all registered checkers concurrently and returns their
// results keyed by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.checkers))
	for _, c := range a.checkers {
		checkers = append(checkers, c)
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			r := runCheck(ctx, c)
			mu.Lock()
			results[c.Name()] = r
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}

// OverallStatus reduces a result set to the worst status observed.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, r := range results {
		if r.Status > status {
			status = r.Status
		}
	}
	return status
}

func runCheck(ctx context.Context, c Checker) Result {
	start := time.Now()
	r := c.Check(ctx)
	r.Duration = time.Since(start)
	return r
}
