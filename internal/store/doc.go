// Package store implements persistence for canonical market data:
// watermark queries and the idempotent merge engine.
//
// Merges are upserts keyed by each entity's natural key, expressed as
// explicit ON CONFLICT targets so the contract is the key itself, never
// driver or session identity. One merge call is one transaction: either
// the whole batch's writes become durable or none do. The engine owns
// created_at/updated_at; re-merging identical records only advances
// updated_at.
package store
