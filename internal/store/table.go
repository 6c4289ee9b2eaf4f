// Package store persists report lines as UTF-8 CSV files.
package store

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// WriteCSV writes header and records as CSV. Every column is kept as text so
// codes with leading zeros survive unchanged.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	if len(records) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	all := make([][]string, 0, len(records)+1)
	all = append(all, header)
	all = append(all, records...)

	df := dataframe.LoadRecords(all,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return fmt.Errorf("failed to build table: %w", df.Err)
	}
	return df.WriteCSV(w)
}
