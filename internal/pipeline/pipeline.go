// =============================================================================
// Kardex Extract - Pipeline Module
// =============================================================================
//
// This module orchestrates the report commands. Each run reads the ledger,
// reshapes it with the transform package and persists the result. The
// pieces it talks to are interfaces so a run can be exercised without a
// database or a network.
//
// PERSISTENCE ORDER:
//   1. The previous output is backed up
//   2. The new output is written atomically
//   3. Only then is the run state recorded
//
// Anything after step 3 (spreadsheet copy, summary, publishing, archive
// retention) is best effort and only logged on failure.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/refcache"
	"github.com/ginjaninja78/kardex-extract/internal/source"
	"github.com/ginjaninja78/kardex-extract/internal/transform"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/internal/xlsxwriter"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// Extractor reads the ledger and the reference tables.
type Extractor interface {
	Movements(ctx context.Context, cutoff *time.Time) ([]types.MovementRecord, error)
	ReferenceTable(ctx context.Context, name string) ([]types.Row, error)
}

// Env is what every run shares.
type Env struct {
	Config     *config.Config
	Source     Extractor
	Cache      refcache.Store
	Files      *utils.FileManager
	Publishers []publish.Publisher
	Log        logrus.FieldLogger

	// Now is replaced in tests.
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// =============================================================================
// REFERENCE TABLES
// =============================================================================

// fetchReferences loads every reference table through the cache policy. A
// table that cannot be read is logged and left empty; its lines are kept
// without enrichment.
func (e *Env) fetchReferences(ctx context.Context, useCache bool, summary *utils.RunSummary) (transform.References, error) {
	var refs transform.References

	for _, name := range source.ReferenceTables() {
		rows, err := refcache.Fetch(ctx, e.Cache, useCache, name, e.Source.ReferenceTable, e.Log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return refs, ctxErr
			}
			e.Log.WithField("table", name).WithError(err).Warn("reference table unavailable, lines kept without enrichment")
			summary.Warnings = append(summary.Warnings, "reference table "+name+" unavailable: "+err.Error())
			continue
		}

		switch name {
		case source.TableProducts:
			refs.Products = rows
		case source.TableGroups:
			refs.Groups = rows
		case source.TableBrands:
			refs.Brands = rows
		case source.TableSubGroups:
			refs.SubGroups = rows
		}
	}
	return refs, nil
}

// =============================================================================
// BEST EFFORT STEPS
// =============================================================================

// backup copies the previous output into the archive. A failure is a
// warning; the atomic write still protects the old file.
func (e *Env) backup(path string, summary *utils.RunSummary) {
	if e.Files == nil {
		return
	}
	archived, err := e.Files.BackupFile(path)
	if err != nil {
		e.Log.WithError(err).Warn("backup of previous output failed")
		summary.Warnings = append(summary.Warnings, "backup failed: "+err.Error())
		return
	}
	summary.BackupFile = archived
}

// publish hands the saved table to every publisher.
func (e *Env) publish(ctx context.Context, t publish.Table, summary *utils.RunSummary) {
	if len(e.Publishers) == 0 {
		return
	}
	if err := publish.All(ctx, e.Publishers, t, e.Log); err != nil {
		summary.Warnings = append(summary.Warnings, "publish: "+err.Error())
	}
}

// writeXLSX saves the spreadsheet copy of a table next to its CSV.
func (e *Env) writeXLSX(t publish.Table, numeric []string, summary *utils.RunSummary) {
	path := e.Config.OutputPath(t.Name + ".xlsx")
	err := xlsxwriter.Write(path, t.Header, t.Records, xlsxwriter.Options{
		SheetName:      t.Name,
		NumericColumns: numeric,
		ColumnWidth:    e.Config.XLSXColumnWidth,
	})
	if err != nil {
		e.Log.WithError(err).Warn("spreadsheet copy not written")
		summary.Warnings = append(summary.Warnings, "xlsx: "+err.Error())
		return
	}
	e.Log.WithField("file", path).Debug("spreadsheet copy written")
}

// finish writes the run summary and applies archive retention.
func (e *Env) finish(summary *utils.RunSummary) {
	summary.EndTime = e.now()

	if path, err := utils.WriteSummaryLog(*summary, e.Config.OutputDir); err != nil {
		e.Log.WithError(err).Warn("run summary not written")
	} else {
		e.Log.WithField("file", path).Debug("run summary written")
	}

	if e.Files == nil || e.Config.ArchiveRetentionDays <= 0 {
		return
	}
	maxAge := time.Duration(e.Config.ArchiveRetentionDays) * 24 * time.Hour
	removed, err := utils.CleanOldArchives(e.Files.ArchiveDir, maxAge)
	if err != nil {
		e.Log.WithError(err).Warn("archive retention failed")
		return
	}
	if removed > 0 {
		e.Log.WithField("removed", removed).Info("old archives removed")
	}
}

// checkCancelled returns the context error so a cancelled run stops before
// anything is persisted.
func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(errors.New("run cancelled"), err)
	}
	return nil
}
