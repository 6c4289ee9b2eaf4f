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
// PRODUCT STOCK EXPORT
// =============================================================================

// ProductReader reads the product register with its stock values.
type ProductReader interface {
	ProductStock(ctx context.Context) ([]types.ProductRecord, error)
}

// Produtos exports every product with its derived stock quantity.
type Produtos struct {
	*Env
	Products ProductReader
}

// ProdutosReport is the outcome of a product export.
type ProdutosReport struct {
	Path    string
	Lines   []types.ProductStockLine
	Totals  transform.ProductTotals
	Summary utils.RunSummary
}

// Run reads the product register and rewrites the export.
func (p *Produtos) Run(ctx context.Context, upload bool) (*ProdutosReport, error) {
	cfg := p.Config
	runID := uuid.NewString()
	log := p.Log.WithFields(logrus.Fields{"run_id": runID, "report": cfg.Products.OutputName})

	path := cfg.OutputPath(cfg.Products.OutputName + ".csv")
	summary := utils.RunSummary{
		Command:    "produtos",
		RunID:      runID,
		Mode:       "full",
		StartTime:  p.now(),
		OutputFile: path,
	}

	records, err := p.Products.ProductStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract products: %w", err)
	}
	summary.RecordsExtracted = len(records)

	lines, totals := transform.BuildProductStock(records)
	summary.LinesBuilt = len(lines)
	summary.TotalLines = len(lines)
	log.WithFields(logrus.Fields{
		"products":     totals.Products,
		"without_cost": totals.WithoutCost,
		"cost_total":   totals.CostTotal.StringFixed(2),
		"retail_total": totals.RetailTotal.StringFixed(2),
	}).Info("product stock computed")
	if totals.WithoutCost > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d product(s) without cost have no quantity", totals.WithoutCost))
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	p.backup(path, &summary)
	if err := store.SaveProducts(path, lines); err != nil {
		return nil, fmt.Errorf("save product export: %w", err)
	}
	log.WithField("file", path).Info("product export saved")

	table := publish.Table{
		Name:    cfg.Products.OutputName,
		Path:    path,
		Header:  types.ProductStockColumns,
		Records: store.ProductRecords(lines),
	}
	if cfg.Products.WriteXLSX {
		p.writeXLSX(table, types.ProductNumericColumns, &summary)
	}
	if upload {
		p.publish(ctx, table, &summary)
	}

	p.finish(&summary)
	return &ProdutosReport{Path: path, Lines: lines, Totals: totals, Summary: summary}, nil
}
