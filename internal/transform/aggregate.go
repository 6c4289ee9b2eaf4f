package transform

import (
	"strings"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// DropUndated removes records without a movement date and returns how many
// were dropped. Such rows cannot be keyed.
func DropUndated(records []types.MovementRecord) ([]types.MovementRecord, int) {
	out := records[:0]
	for _, r := range records {
		if strings.TrimSpace(r.Date) == "" {
			continue
		}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// Aggregate groups classified movements by (grade, date, user, movement
// type). Quantities are summed; descriptive fields and the time of day come
// from the first movement of each group that has them. Groups keep
// first-seen order.
func Aggregate(movements []Classified) []types.AggregatedLine {
	index := make(map[types.Key]int, len(movements))
	lines := make([]types.AggregatedLine, 0, len(movements))

	for _, m := range movements {
		r := m.Record
		key := types.Key{
			GradeCode:    r.GradeCode,
			Date:         r.Date,
			Username:     r.Username,
			MovementType: m.Type,
		}

		if i, ok := index[key]; ok {
			l := &lines[i]
			l.Quantity = l.Quantity.Add(m.Quantity)
			fillBlank(&l.Store, r.Store)
			fillBlank(&l.ProductCode, r.ProductCode)
			fillBlank(&l.Description, r.Description)
			fillBlank(&l.Color, r.Color)
			fillBlank(&l.Size, r.Size)
			fillBlank(&l.Time, r.Time)
			continue
		}

		index[key] = len(lines)
		lines = append(lines, types.AggregatedLine{
			GradeCode:    key.GradeCode,
			Date:         key.Date,
			Username:     key.Username,
			MovementType: key.MovementType,
			Store:        r.Store,
			ProductCode:  r.ProductCode,
			Description:  r.Description,
			Color:        r.Color,
			Size:         r.Size,
			Time:         r.Time,
			Quantity:     m.Quantity,
		})
	}
	return lines
}

// fillBlank sets *dst to v when *dst is blank.
func fillBlank(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" && strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// setIfPresent overwrites *dst with v unless v is blank.
func setIfPresent(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
