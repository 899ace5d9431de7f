// Package model defines the canonical, provider-agnostic data types shared
// across the collector.
//
// Conventions:
//   - Prices, ratios, and volumes: float64
//   - Bar timestamps: time.Time in UTC (date-only for daily and coarser bars)
//   - Fields a provider may fail to supply: OptFloat, never a bare zero
//
// Adapters never populate CreatedAt/UpdatedAt; the merge engine owns those.
package model
