// Package merge upserts freshly aggregated report lines into the persisted
// ones by composite key.
package merge

import (
	"sort"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Result is the outcome of an upsert.
type Result struct {
	Lines []types.AggregatedLine

	// Updated counts incoming keys that replaced an existing line.
	Updated int

	// Inserted counts incoming keys with no existing line.
	Inserted int

	// Kept counts existing lines carried over unchanged.
	Kept int
}

// Upsert replaces every existing line whose key appears among incoming and
// keeps the others. Duplicate keys within one side collapse to the last
// occurrence, so the result never holds two lines with the same key.
// The result is sorted by date, time, user, grade and movement type.
func Upsert(existing, incoming []types.AggregatedLine) Result {
	merged := make(map[types.Key]types.AggregatedLine, len(existing)+len(incoming))
	for _, l := range existing {
		merged[l.Key()] = l
	}
	before := len(merged)

	var res Result
	fresh := make(map[types.Key]bool, len(incoming))
	for _, l := range incoming {
		k := l.Key()
		if !fresh[k] {
			fresh[k] = true
			if _, ok := merged[k]; ok {
				res.Updated++
			} else {
				res.Inserted++
			}
		}
		merged[k] = l
	}
	res.Kept = before - res.Updated

	res.Lines = make([]types.AggregatedLine, 0, len(merged))
	for _, l := range merged {
		res.Lines = append(res.Lines, l)
	}
	Sort(res.Lines)
	return res
}

// Sort orders lines by date, time, user, grade and movement type.
func Sort(lines []types.AggregatedLine) {
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		if a.GradeCode != b.GradeCode {
			return a.GradeCode < b.GradeCode
		}
		return a.MovementType < b.MovementType
	})
}
