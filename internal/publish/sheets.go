package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ginjaninja78/kardex-extract/internal/config"
)

// sheetsBatchRows is the number of rows sent per update call.
const sheetsBatchRows = 5000

// sheetsAPI is the part of the Sheets service the publisher uses.
type sheetsAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	SheetID(ctx context.Context, spreadsheetID, title string) (int64, error)
	FormatHeader(ctx context.Context, spreadsheetID string, sheetID int64, cols int) error
}

// SheetsPublisher rewrites one spreadsheet tab with a table.
type SheetsPublisher struct {
	api           sheetsAPI
	spreadsheetID string
	sheetName     string
	log           logrus.FieldLogger
}

// NewSheetsPublisher connects with a service account credentials file.
func NewSheetsPublisher(ctx context.Context, cfg config.SheetsConfig, log logrus.FieldLogger) (*SheetsPublisher, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &SheetsPublisher{
		api:           &googleSheets{srv: srv},
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		log:           log,
	}, nil
}

func (p *SheetsPublisher) Name() string { return "sheets" }

func (p *SheetsPublisher) Close() error { return nil }

// Publish clears the tab (creating it when missing), writes the header and
// rows from A1 as raw values, then formats the header. Formatting failures
// are only logged.
func (p *SheetsPublisher) Publish(ctx context.Context, t Table) error {
	sheet := p.sheetName
	if sheet == "" {
		sheet = t.Name
	}
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"

	if err := p.api.Clear(ctx, p.spreadsheetID, quoted+"!A:ZZ"); err != nil {
		if !isMissingSheet(err) {
			return fmt.Errorf("clear sheet %s: %w", sheet, err)
		}
		p.log.WithField("sheet", sheet).Info("sheet not found, creating it")
		if err := p.api.AddSheet(ctx, p.spreadsheetID, sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	rows := make([][]interface{}, 0, len(t.Records)+1)
	rows = append(rows, toValues(t.Header))
	for _, rec := range t.Records {
		rows = append(rows, toValues(rec))
	}

	for start := 0; start < len(rows); start += sheetsBatchRows {
		end := start + sheetsBatchRows
		if end > len(rows) {
			end = len(rows)
		}
		rng := fmt.Sprintf("%s!A%d", quoted, start+1)
		if err := p.api.Update(ctx, p.spreadsheetID, rng, rows[start:end]); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	id, err := p.api.SheetID(ctx, p.spreadsheetID, sheet)
	if err == nil {
		err = p.api.FormatHeader(ctx, p.spreadsheetID, id, len(t.Header))
	}
	if err != nil {
		p.log.WithField("sheet", sheet).WithError(err).Warn("header formatting skipped")
	}
	return nil
}

// isMissingSheet reports whether err is the 400 the API returns for a
// range on a tab that does not exist.
func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(gerr.Message, "Unable to parse range") ||
		strings.Contains(gerr.Body, "Unable to parse range")
}

func toValues(rec []string) []interface{} {
	out := make([]interface{}, len(rec))
	for i, v := range rec {
		out[i] = v
	}
	return out
}

// googleSheets adapts *sheets.Service to sheetsAPI.
type googleSheets struct {
	srv *sheets.Service
}

func (g *googleSheets) Clear(ctx context.Context, id, rng string) error {
	_, err := g.srv.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleSheets) AddSheet(ctx context.Context, id, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}
	_, err := g.srv.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
	return err
}

func (g *googleSheets) Update(ctx context.Context, id, rng string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Update(id, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleSheets) SheetID(ctx context.Context, id, title string) (int64, error) {
	ss, err := g.srv.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %s not found", title)
}

func (g *googleSheets) FormatHeader(ctx context.Context, id string, sheetID int64, cols int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat:      &sheets.TextFormat{Bold: true},
							BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						},
					},
					Fields: "userEnteredFormat(textFormat,backgroundColor)",
				},
			},
			{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   int64(cols),
					},
				},
			},
		},
	}
	_, err := g.srv.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
	return err
}
