package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ginjaninja78/kardex-extract/internal/csvparser"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// UpsertResult counts what UpsertCSV did.
type UpsertResult struct {
	Updated  int
	Inserted int
	Kept     int
	Total    int

	// Records is the merged file content, header excluded.
	Records [][]string
}

// UpsertCSV merges records into the CSV at path by the key columns: a
// record replaces the persisted row with the same key, other persisted rows
// are kept. Persisted rows are read by column name, so a file written with
// an older column set is carried over with blanks for new columns. The
// result is sorted by key and written atomically.
func UpsertCSV(path string, header []string, records [][]string, keyColumns []string) (UpsertResult, error) {
	var res UpsertResult

	keyIdx := make([]int, len(keyColumns))
	for i, k := range keyColumns {
		keyIdx[i] = indexOf(header, k)
		if keyIdx[i] < 0 {
			return res, fmt.Errorf("upsert %s: key column %s not in header", path, k)
		}
	}
	keyOf := func(rec []string) string {
		parts := make([]string, len(keyIdx))
		for i, j := range keyIdx {
			parts[i] = rec[j]
		}
		return strings.Join(parts, "\x00")
	}

	existing, err := loadRecords(path, header, keyColumns)
	if err != nil {
		return res, err
	}

	fresh := make(map[string]bool, len(records))
	for _, rec := range records {
		fresh[keyOf(rec)] = true
	}

	merged := make([][]string, 0, len(existing)+len(records))
	seen := make(map[string]bool, len(existing))
	for _, rec := range existing {
		k := keyOf(rec)
		seen[k] = true
		if fresh[k] {
			continue
		}
		merged = append(merged, rec)
		res.Kept++
	}
	for _, rec := range records {
		if seen[keyOf(rec)] {
			res.Updated++
		} else {
			res.Inserted++
		}
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(a, b int) bool {
		for _, j := range keyIdx {
			if merged[a][j] != merged[b][j] {
				return merged[a][j] < merged[b][j]
			}
		}
		return false
	})
	res.Total = len(merged)
	res.Records = merged

	err = utils.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, header, merged)
	})
	if err != nil {
		return res, fmt.Errorf("upsert %s: %w", path, err)
	}
	return res, nil
}

// loadRecords reads a persisted CSV projected onto header. A missing file
// yields nothing.
func loadRecords(path string, header, keyColumns []string) ([][]string, error) {
	data, err := csvparser.Parse(path, csvparser.Settings{})
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, csvparser.ErrEmpty):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if missing, ok := csvparser.HasColumns(data, keyColumns...); !ok {
		return nil, fmt.Errorf("load %s: key column %s missing", path, missing)
	}

	out := make([][]string, 0, data.RowCount)
	for _, row := range data.Rows {
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = row[h]
		}
		out = append(out, rec)
	}
	return out, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
