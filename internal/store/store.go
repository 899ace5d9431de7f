package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/marketdata/internal/model"
)

// Store provides watermark queries and merges over one PostgreSQL pool.
// The pool is the single shared resource of a collection run; callers
// acquire it at process start and close it on every exit path.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// LatestBarTime returns the newest stored bar date for (symbol,
// granularity), with ok=false when no bars exist yet.
func (s *Store) LatestBarTime(ctx context.Context, symbol string, g model.Granularity) (time.Time, bool, error) {
	var ts *time.Time
	err := s.db.QueryRow(ctx, `
		SELECT max(b.bar_date)
		FROM price_bar b
		JOIN instrument i ON i.id = b.instrument_id
		WHERE i.symbol = $1 AND b.granularity = $2
	`, symbol, string(g)).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query latest bar time: %w", err)
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

// InstrumentExists reports whether the symbol has been collected.
func (s *Store) InstrumentExists(ctx context.Context, symbol string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM instrument WHERE symbol = $1)`, symbol,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query instrument exists: %w", err)
	}
	return exists, nil
}

// ExistingSymbols returns the subset of symbols already present as
// instruments.
func (s *Store) ExistingSymbols(ctx context.Context, symbols []string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx,
		`SELECT symbol FROM instrument WHERE symbol = ANY($1)`, symbols,
	)
	if err != nil {
		return nil, fmt.Errorf("query existing symbols: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		existing[sym] = true
	}
	return existing, rows.Err()
}

// HasRecentFundamentals reports whether a fundamentals snapshot exists
// for the symbol with target date on or after since.
func (s *Store) HasRecentFundamentals(ctx context.Context, symbol string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM fundamental_snapshot f
			JOIN instrument i ON i.id = f.instrument_id
			WHERE i.symbol = $1 AND f.target_date >= $2
		)
	`, symbol, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query recent fundamentals: %w", err)
	}
	return exists, nil
}
