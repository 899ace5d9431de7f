package model

import "math"

// OptFloat is a float64 that may be unknown. Providers return missing,
// null, or sentinel values for numeric fields; those become an unknown
// OptFloat rather than a zero, so downstream code can tell "no data"
// from "actually zero".
type OptFloat struct {
	Value float64
	Known bool
}

// Known returns a known OptFloat. NaN and infinities are treated as
// unknown since they only ever arrive as provider garbage.
func Known(v float64) OptFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return OptFloat{}
	}
	return OptFloat{Value: v, Known: true}
}

// Unknown returns the unknown sentinel.
func Unknown() OptFloat {
	return OptFloat{}
}

// Ptr returns a pointer suitable for a nullable database column:
// nil when unknown.
func (o OptFloat) Ptr() *float64 {
	if !o.Known {
		return nil
	}
	v := o.Value
	return &v
}
