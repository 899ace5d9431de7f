// Package database provides connection pool management for PostgreSQL.
//
// The collector keeps all persisted market data (instruments, OHLCV bars,
// fundamentals, market metrics, sector returns) in a single PostgreSQL
// database; the pool is scoped to one collector process.
package database
