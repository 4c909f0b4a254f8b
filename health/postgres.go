package health

import (
	"context"
	"database/sql"
)

// PostgresChecker pings the database connection pool.
type PostgresChecker struct {
	db *sql.DB
}

// NewPostgresChecker creates a PostgresChecker.
func NewPostgresChecker(db *sql.DB) *PostgresChecker {
	return &PostgresChecker{db: db}
}

// Name returns "postgres".
func (c *PostgresChecker) Name() string { return "postgres" }

// Check pings the database.
func (c *PostgresChecker) Check(ctx context.Context) Result {
	if err := c.db.PingContext(ctx); err != nil {
		return Unhealthy("database unreachable", err)
	}
	return Healthy("database reachable")
}

// Ensure PostgresChecker implements Checker
var _ Checker = (*PostgresChecker)(nil)
