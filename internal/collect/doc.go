// Package collect orchestrates reconciliation runs: for each data kind it
// reads the stored watermark, estimates the gap, fetches the missing window
// from the provider, normalizes it, and merges it idempotently. Failures
// are isolated per entity so one bad symbol never aborts a run.
package collect
