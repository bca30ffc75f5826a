// Package aqi converts particulate-matter concentrations into Air Quality
// Index values using piecewise-linear breakpoint tables.
//
// All functions are pure and safe for concurrent use. "No data" is modeled
// as a nil pointer, never as zero: a missing concentration yields a missing
// sub-index, and missing sub-indices are excluded from the overall AQI.
package aqi

import (
	"errors"
	"math"
)

// ErrInvalidInput reports a concentration that is not a usable number
// (negative, NaN or infinite). This is distinct from "no data", which is
// represented by a nil concentration and is not an error.
var ErrInvalidInput = errors.New("aqi: invalid concentration")

// Interpolate maps a concentration onto the index range of a single
// breakpoint. The second return value is false when the concentration lies
// outside [ConcLo, ConcHi]. A degenerate band (ConcHi == ConcLo) yields
// IndexLo.
func Interpolate(c float64, bp Breakpoint) (float64, bool) {
	if c < bp.ConcLo || c > bp.ConcHi {
		return 0, false
	}
	if bp.ConcHi == bp.ConcLo {
		return float64(bp.IndexLo), true
	}
	slope := float64(bp.IndexHi-bp.IndexLo) / (bp.ConcHi - bp.ConcLo)
	return float64(bp.IndexLo) + slope*(c-bp.ConcLo), true
}

// SubIndex maps an optional concentration through a breakpoint table.
//
// A nil concentration returns (nil, nil). Concentrations above the last
// band are extrapolated along the last band's slope rather than capped, so
// extreme readings produce sub-indices above the table's nominal maximum.
// Results are rounded half up; the rule is fixed so that category
// boundaries are reproducible.
func SubIndex(c *float64, table []Breakpoint) (*int, error) {
	if c == nil {
		return nil, nil
	}
	v := *c
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, ErrInvalidInput
	}
	if len(table) == 0 || v < table[0].ConcLo {
		return nil, nil
	}

	for _, bp := range table {
		if idx, ok := Interpolate(v, bp); ok {
			return roundIndex(idx), nil
		}
	}

	// Above the top band: extend the last band's slope instead of capping.
	last := table[len(table)-1]
	if last.ConcHi == last.ConcLo {
		return roundIndex(float64(last.IndexLo)), nil
	}
	slope := float64(last.IndexHi-last.IndexLo) / (last.ConcHi - last.ConcLo)
	return roundIndex(float64(last.IndexLo) + slope*(v-last.ConcLo)), nil
}

// Overall aggregates per-pollutant sub-indices into the overall AQI: the
// worst pollutant dominates. Nil entries are skipped; when every entry is
// nil the result is nil, not zero.
func Overall(subs ...*int) *int {
	var max *int
	for _, s := range subs {
		if s == nil {
			continue
		}
		if max == nil || *s > *max {
			v := *s
			max = &v
		}
	}
	return max
}

// roundIndex rounds half up.
func roundIndex(v float64) *int {
	n := int(math.Floor(v + 0.5))
	return &n
}
