package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/period"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/store"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/internal/xlsxwriter"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// =============================================================================
// PERIOD SALES REPORT
// =============================================================================

// reportSheet is the tab of the period spreadsheet.
const reportSheet = "Relatorio"

// SalesReader reads orders and cash entries of a period.
type SalesReader interface {
	Orders(ctx context.Context, dateColumn string, start, end *time.Time) ([]types.Order, error)
	Credits(ctx context.Context, start, end *time.Time) ([]types.CreditEntry, error)
}

// Periodo builds the period sales report.
type Periodo struct {
	*Env
	Sales SalesReader
}

// PeriodoOptions bounds the report. Nil bounds are open.
type PeriodoOptions struct {
	Start, End *time.Time
	Upload     bool
}

// PeriodoReport is the outcome of a period run.
type PeriodoReport struct {
	Path       string
	DailyFacts store.UpsertResult
	SellerFact store.UpsertResult
	Report     *period.Report
	Summary    utils.RunSummary
}

// Run reads the period, writes the sectioned spreadsheet and upserts the
// daily and per-seller fact files.
func (p *Periodo) Run(ctx context.Context, opts PeriodoOptions) (*PeriodoReport, error) {
	cfg := p.Config
	pc := cfg.Period
	runID := uuid.NewString()
	log := p.Log.WithFields(logrus.Fields{"run_id": runID, "report": pc.OutputName})

	path := cfg.OutputPath(pc.OutputName + period.Suffix(opts.Start, opts.End) + ".xlsx")
	summary := utils.RunSummary{
		Command:    "periodo",
		RunID:      runID,
		Mode:       "period",
		StartTime:  p.now(),
		Cutoff:     periodLabel(opts.Start, opts.End),
		OutputFile: path,
	}

	orders, err := p.Sales.Orders(ctx, pc.DateColumn, opts.Start, opts.End)
	if err != nil {
		return nil, fmt.Errorf("extract orders: %w", err)
	}
	credits, err := p.Sales.Credits(ctx, opts.Start, opts.End)
	if err != nil {
		return nil, fmt.Errorf("extract credits: %w", err)
	}
	summary.RecordsExtracted = len(orders)
	log.WithFields(logrus.Fields{"orders": len(orders), "credits": len(credits)}).Info("period extracted")

	rep := period.NewBuilder(pc).Build(orders, credits, opts.Start, opts.End)
	summary.LinesBuilt = len(rep.Daily)
	if rep.Undated > 0 {
		log.WithField("count", rep.Undated).Warn("orders without a date skipped")
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%d order(s) without %s skipped", rep.Undated, pc.DateColumn))
	}
	if rep.Excluded > 0 {
		log.WithField("count", rep.Excluded).Info("orders with excluded status dropped")
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	p.backup(path, &summary)
	err = xlsxwriter.WriteSections(path, rep.Sections(pc.DetailColumns(), pc), xlsxwriter.Options{
		SheetName:   reportSheet,
		ColumnWidth: cfg.XLSXColumnWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("save period report: %w", err)
	}
	log.WithField("file", path).Info("period report saved")

	out := &PeriodoReport{Path: path, Report: rep}

	dailyPath := cfg.OutputPath(pc.DailyFactFile)
	out.DailyFacts, err = store.UpsertCSV(dailyPath, types.PeriodDetailColumns,
		rep.DailyRecords(types.PeriodDetailColumns), []string{types.ColPeriodDate})
	if err != nil {
		return nil, fmt.Errorf("daily facts: %w", err)
	}

	sellerPath := cfg.OutputPath(pc.SellerFactFile)
	out.SellerFact, err = store.UpsertCSV(sellerPath, period.SellerDailyHeader,
		rep.SellerDailyRecords(), []string{types.ColPeriodDate, types.ColPeriodSeller})
	if err != nil {
		return nil, fmt.Errorf("seller facts: %w", err)
	}

	summary.LinesUpdated = out.DailyFacts.Updated
	summary.LinesInserted = out.DailyFacts.Inserted
	summary.LinesKept = out.DailyFacts.Kept
	summary.TotalLines = out.DailyFacts.Total
	log.WithFields(logrus.Fields{
		"days_updated":    out.DailyFacts.Updated,
		"days_inserted":   out.DailyFacts.Inserted,
		"sellers_updated": out.SellerFact.Updated,
		"sellers_added":   out.SellerFact.Inserted,
	}).Info("fact files upserted")

	if opts.Upload {
		p.publish(ctx, factTable(dailyPath, types.PeriodDetailColumns, out.DailyFacts), &summary)
		p.publish(ctx, factTable(sellerPath, period.SellerDailyHeader, out.SellerFact), &summary)
	}

	p.finish(&summary)
	out.Summary = summary
	return out, nil
}

// factTable names a fact table after its file.
func factTable(path string, header []string, res store.UpsertResult) publish.Table {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return publish.Table{Name: name, Path: path, Header: header, Records: res.Records}
}

func periodLabel(start, end *time.Time) string {
	label := func(t *time.Time) string {
		if t == nil {
			return "..."
		}
		return t.Format("2006-01-02")
	}
	return label(start) + " to " + label(end)
}
