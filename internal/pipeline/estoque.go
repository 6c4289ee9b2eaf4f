package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/store"
	"github.com/ginjaninja78/kardex-extract/internal/transform"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// =============================================================================
// STOCK REPORT
// =============================================================================

// Estoque builds the stock-by-grade report from the whole ledger.
type Estoque struct {
	*Env
}

// EstoqueReport is the outcome of a stock run.
type EstoqueReport struct {
	Path    string
	Lines   []types.StockLine
	Stats   transform.StockStats
	Summary utils.RunSummary
}

// Run extracts every movement, consolidates the balance per grade and
// rewrites the stock report. Reference tables are always read from the
// database and refresh the cache.
func (e *Estoque) Run(ctx context.Context, upload bool) (*EstoqueReport, error) {
	cfg := e.Config
	start := e.now()
	runID := uuid.NewString()
	log := e.Log.WithFields(logrus.Fields{"run_id": runID, "report": cfg.Stock.OutputName})

	path := cfg.OutputPath(cfg.Stock.OutputName + ".csv")
	summary := utils.RunSummary{
		Command:    "estoque",
		RunID:      runID,
		Mode:       "full",
		StartTime:  start,
		OutputFile: path,
	}

	records, err := e.Source.Movements(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("extract movements: %w", err)
	}
	summary.RecordsExtracted = len(records)
	log.WithField("rows", len(records)).Info("movements extracted")

	refs, err := e.fetchReferences(ctx, false, &summary)
	if err != nil {
		return nil, err
	}
	catalog := transform.BuildCatalog(refs)

	lines, stats := transform.BuildStock(records, catalog, cfg.Stock.ExcludeHistoryMarker)
	summary.LinesBuilt = len(lines)
	summary.TotalLines = len(lines)
	log.WithFields(logrus.Fields{
		"grades":        len(lines),
		"skipped_count": stats.SkippedByHistory,
		"skipped_empty": stats.SkippedEmpty,
		"dropped":       stats.DroppedUnique,
	}).Info("stock consolidated")

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	e.backup(path, &summary)
	if err := store.SaveStock(path, lines); err != nil {
		return nil, fmt.Errorf("save stock report: %w", err)
	}
	log.WithField("file", path).Info("stock report saved")

	table := publish.Table{
		Name:    cfg.Stock.OutputName,
		Path:    path,
		Header:  types.StockColumns,
		Records: store.StockRecords(lines),
	}

	if cfg.Stock.WriteXLSX {
		e.writeXLSX(table, types.NumericColumns, &summary)
	}
	if upload {
		e.publish(ctx, table, &summary)
	}

	e.finish(&summary)
	return &EstoqueReport{Path: path, Lines: lines, Stats: stats, Summary: summary}, nil
}
