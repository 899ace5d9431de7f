// Package normalize converts provider-native raw records into canonical
// records.
//
// Rules applied uniformly across providers:
//   - Numeric fields coerce to float64; anything uncoercible ("N/A",
//     ".", null, absent) becomes an explicit unknown, never a zero.
//   - A bar with any unknown open/high/low/close is dropped whole; a
//     partial price bar is worse than a missing one.
//   - A record whose timestamp (its key field) fails to parse is dropped
//     with a logged reason; the rest of the batch survives.
//   - Output is always in ascending chronological order, whatever order
//     the provider used.
package normalize
