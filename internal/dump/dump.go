// Package dump copies a database table into a full CSV and a spreadsheet
// sample of its first rows.
package dump

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/source"
	"github.com/ginjaninja78/kardex-extract/internal/store"
	"github.com/ginjaninja78/kardex-extract/internal/xlsxwriter"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// Querier reads whole tables.
type Querier interface {
	Table(ctx context.Context, table string, limit int) (*source.Result, error)
}

// Options control one dump.
type Options struct {
	OutputDir string

	// Limit caps the rows read from the database. Zero reads everything.
	Limit int

	// SampleRows is the size of the XLSX sample. Zero skips the sample.
	SampleRows int

	// ColumnWidth of the sample spreadsheet. Zero keeps the default.
	ColumnWidth float64
}

// Result describes the files written.
type Result struct {
	Table      string
	CSVPath    string
	SamplePath string
	Rows       int
	Columns    int
}

// Run dumps table into <TABLE>_FULL.csv and <TABLE>_sample.xlsx. A failed
// sample is logged and leaves SamplePath empty.
func Run(ctx context.Context, q Querier, table string, opts Options, log logrus.FieldLogger) (*Result, error) {
	name := strings.ToUpper(table)
	entry := log.WithField("table", name)

	res, err := q.Table(ctx, name, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", name, err)
	}
	records := res.Strings()

	out := &Result{
		Table:   name,
		CSVPath: filepath.Join(opts.OutputDir, name+"_FULL.csv"),
		Rows:    len(records),
		Columns: len(res.Columns),
	}

	err = utils.WriteFileAtomic(out.CSVPath, func(w io.Writer) error {
		return store.WriteCSV(w, res.Columns, records)
	})
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", name, err)
	}
	entry.WithFields(logrus.Fields{"rows": out.Rows, "columns": out.Columns, "file": out.CSVPath}).Info("table dumped")

	if opts.SampleRows <= 0 {
		return out, nil
	}

	sample := records
	if len(sample) > opts.SampleRows {
		sample = sample[:opts.SampleRows]
	}
	samplePath := filepath.Join(opts.OutputDir, name+"_sample.xlsx")
	if err := xlsxwriter.Write(samplePath, res.Columns, sample, xlsxwriter.Options{SheetName: name, ColumnWidth: opts.ColumnWidth}); err != nil {
		entry.WithError(err).Warn("sample spreadsheet not written")
		return out, nil
	}
	out.SamplePath = samplePath
	return out, nil
}
