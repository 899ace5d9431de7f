package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/marketdata/internal/model"
)

// resolveInstrumentIDs maps symbols to instrument ids within tx.
// Symbols with no instrument row are simply absent from the map; the
// caller skips their records rather than auto-creating instruments.
func resolveInstrumentIDs(ctx context.Context, tx pgx.Tx, symbols []string) (map[string]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT symbol, id FROM instrument WHERE symbol = ANY($1)`, symbols,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve instrument ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64, len(symbols))
	for rows.Next() {
		var sym string
		var id int64
		if err := rows.Scan(&sym, &id); err != nil {
			return nil, fmt.Errorf("scan instrument id: %w", err)
		}
		ids[sym] = id
	}
	return ids, rows.Err()
}

// uniqueSymbols collects the distinct symbols of a record batch.
func uniqueSymbols[T any](records []T, symbol func(T) string) []string {
	seen := make(map[string]bool, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		s := symbol(r)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// runUpserts executes a queued upsert batch. Every queued statement must
// end with `RETURNING (xmax = 0)`, which is true exactly when the row
// was inserted rather than updated.
func runUpserts(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) (model.MergeReport, error) {
	var report model.MergeReport

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		var inserted bool
		if err := results.QueryRow().Scan(&inserted); err != nil {
			return model.MergeReport{}, fmt.Errorf("upsert %d of %d: %w", i+1, batch.Len(), err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	if err := results.Close(); err != nil {
		return model.MergeReport{}, fmt.Errorf("close batch: %w", err)
	}
	return report, nil
}

// inTx runs fn inside a transaction, rolling back on any error.
func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) (model.MergeReport, error)) (model.MergeReport, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.MergeReport{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	report, err := fn(tx)
	if err != nil {
		return model.MergeReport{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.MergeReport{}, fmt.Errorf("commit tx: %w", err)
	}
	return report, nil
}

// MergeInstruments upserts instruments by symbol, refreshing the mutable
// profile fields.
func (s *Store) MergeInstruments(ctx context.Context, instruments []model.Instrument) (model.MergeReport, error) {
	if len(instruments) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		batch := &pgx.Batch{}
		for _, inst := range instruments {
			batch.Queue(`
				INSERT INTO instrument (symbol, name, sector, industry, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
				ON CONFLICT (symbol) DO UPDATE SET
					name = EXCLUDED.name,
					sector = EXCLUDED.sector,
					industry = EXCLUDED.industry,
					updated_at = now()
				RETURNING (xmax = 0)
			`, inst.Symbol, inst.Name, inst.Sector, inst.Industry)
		}
		return runUpserts(ctx, tx, batch)
	})
}

// MergePriceBars upserts historical bars by (instrument, granularity,
// bar date). Bars for unknown instruments are skipped with a warning;
// instrument collection must have run first.
func (s *Store) MergePriceBars(ctx context.Context, bars []model.PriceBar) (model.MergeReport, error) {
	if len(bars) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		ids, err := resolveInstrumentIDs(ctx, tx, uniqueSymbols(bars, func(b model.PriceBar) string { return b.Symbol }))
		if err != nil {
			return model.MergeReport{}, err
		}

		var skipped int
		batch := &pgx.Batch{}
		for _, bar := range bars {
			id, ok := ids[bar.Symbol]
			if !ok {
				s.logger.Warn("skipping bar for unknown instrument", "symbol", bar.Symbol)
				skipped++
				continue
			}
			batch.Queue(`
				INSERT INTO price_bar (instrument_id, granularity, bar_date, open, high, low, close, volume, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
				ON CONFLICT (instrument_id, granularity, bar_date) DO UPDATE SET
					open = EXCLUDED.open,
					high = EXCLUDED.high,
					low = EXCLUDED.low,
					close = EXCLUDED.close,
					volume = EXCLUDED.volume,
					updated_at = now()
				RETURNING (xmax = 0)
			`, id, string(bar.Granularity), bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}

		report, err := runUpserts(ctx, tx, batch)
		if err != nil {
			return model.MergeReport{}, err
		}
		report.Skipped = skipped
		return report, nil
	})
}

// MergeIntradayBars upserts latest ticks by (instrument, granularity).
// The timestamp is a mutable field here: each refresh overwrites the
// single live row in place.
func (s *Store) MergeIntradayBars(ctx context.Context, ticks []model.IntradayBar) (model.MergeReport, error) {
	if len(ticks) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		ids, err := resolveInstrumentIDs(ctx, tx, uniqueSymbols(ticks, func(b model.IntradayBar) string { return b.Symbol }))
		if err != nil {
			return model.MergeReport{}, err
		}

		var skipped int
		batch := &pgx.Batch{}
		for _, tick := range ticks {
			id, ok := ids[tick.Symbol]
			if !ok {
				s.logger.Warn("skipping tick for unknown instrument", "symbol", tick.Symbol)
				skipped++
				continue
			}
			batch.Queue(`
				INSERT INTO intraday_bar (instrument_id, granularity, bar_time, open, high, low, close, volume, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
				ON CONFLICT (instrument_id, granularity) DO UPDATE SET
					bar_time = EXCLUDED.bar_time,
					open = EXCLUDED.open,
					high = EXCLUDED.high,
					low = EXCLUDED.low,
					close = EXCLUDED.close,
					volume = EXCLUDED.volume,
					updated_at = now()
				RETURNING (xmax = 0)
			`, id, string(tick.Granularity), tick.Timestamp, tick.Open, tick.High, tick.Low, tick.Close, tick.Volume)
		}

		report, err := runUpserts(ctx, tx, batch)
		if err != nil {
			return model.MergeReport{}, err
		}
		report.Skipped = skipped
		return report, nil
	})
}

// MergeFundamentals upserts snapshots by (instrument, target date).
// Unknown ratios store as NULL, never zero.
func (s *Store) MergeFundamentals(ctx context.Context, snaps []model.FundamentalSnapshot) (model.MergeReport, error) {
	if len(snaps) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		ids, err := resolveInstrumentIDs(ctx, tx, uniqueSymbols(snaps, func(f model.FundamentalSnapshot) string { return f.Symbol }))
		if err != nil {
			return model.MergeReport{}, err
		}

		var skipped int
		batch := &pgx.Batch{}
		for _, snap := range snaps {
			id, ok := ids[snap.Symbol]
			if !ok {
				s.logger.Warn("skipping fundamentals for unknown instrument", "symbol", snap.Symbol)
				skipped++
				continue
			}
			batch.Queue(`
				INSERT INTO fundamental_snapshot (instrument_id, target_date, roe, eps, bps, beta, market_cap, dividend_yield, current_ratio, debt_ratio, sector, industry, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
				ON CONFLICT (instrument_id, target_date) DO UPDATE SET
					roe = EXCLUDED.roe,
					eps = EXCLUDED.eps,
					bps = EXCLUDED.bps,
					beta = EXCLUDED.beta,
					market_cap = EXCLUDED.market_cap,
					dividend_yield = EXCLUDED.dividend_yield,
					current_ratio = EXCLUDED.current_ratio,
					debt_ratio = EXCLUDED.debt_ratio,
					sector = EXCLUDED.sector,
					industry = EXCLUDED.industry,
					updated_at = now()
				RETURNING (xmax = 0)
			`, id, snap.TargetDate,
				snap.ROE.Ptr(), snap.EPS.Ptr(), snap.BPS.Ptr(), snap.Beta.Ptr(),
				snap.MarketCap.Ptr(), snap.DividendYield.Ptr(), snap.CurrentRatio.Ptr(), snap.DebtRatio.Ptr(),
				snap.Sector, snap.Industry)
		}

		report, err := runUpserts(ctx, tx, batch)
		if err != nil {
			return model.MergeReport{}, err
		}
		report.Skipped = skipped
		return report, nil
	})
}

// MergeMarketMetrics upserts metrics by (name, date).
func (s *Store) MergeMarketMetrics(ctx context.Context, metrics []model.MarketMetric) (model.MergeReport, error) {
	if len(metrics) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		batch := &pgx.Batch{}
		for _, m := range metrics {
			batch.Queue(`
				INSERT INTO market_metric (name, metric_date, value, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
				ON CONFLICT (name, metric_date) DO UPDATE SET
					value = EXCLUDED.value,
					updated_at = now()
				RETURNING (xmax = 0)
			`, m.Name, m.Date, m.Value)
		}
		return runUpserts(ctx, tx, batch)
	})
}

// MergeSectorReturns upserts returns by (date, sector).
func (s *Store) MergeSectorReturns(ctx context.Context, returns []model.SectorReturn) (model.MergeReport, error) {
	if len(returns) == 0 {
		return model.MergeReport{}, nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) (model.MergeReport, error) {
		batch := &pgx.Batch{}
		for _, r := range returns {
			batch.Queue(`
				INSERT INTO sector_return (return_date, sector, pct_return, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
				ON CONFLICT (return_date, sector) DO UPDATE SET
					pct_return = EXCLUDED.pct_return,
					updated_at = now()
				RETURNING (xmax = 0)
			`, r.Date, r.Sector, r.Return)
		}
		return runUpserts(ctx, tx, batch)
	})
}
