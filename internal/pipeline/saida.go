package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/merge"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/runstate"
	"github.com/ginjaninja78/kardex-extract/internal/store"
	"github.com/ginjaninja78/kardex-extract/internal/transform"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/internal/validation"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// =============================================================================
// MOVEMENT REPORT
// =============================================================================

// Saida builds the incremental movement report.
type Saida struct {
	*Env

	Lines   store.LineStore
	Tracker runstate.Tracker
}

// SaidaOptions are the command line choices of one run.
type SaidaOptions struct {
	runstate.Options

	// Upload publishes the saved report.
	Upload bool
}

// SaidaReport is the outcome of a run.
type SaidaReport struct {
	Plan    runstate.Plan
	State   *runstate.RunState
	Summary utils.RunSummary

	// Written is false when an empty incremental window left the output
	// untouched.
	Written bool
}

// Run executes one pass of the movement report.
//
// PROCESSING STEPS:
//  1. Read the last run state and decide the mode
//  2. Extract ledger rows from the cutoff
//  3. Classify and aggregate by key
//  4. Enrich with the reference tables
//  5. Upsert into the persisted output (incremental and day modes)
//  6. Validate, back up and save the output
//  7. Record the run state
//  8. Spreadsheet copy, summary and publishing
func (s *Saida) Run(ctx context.Context, opts SaidaOptions) (*SaidaReport, error) {
	cfg := s.Config
	start := s.now()
	runID := uuid.NewString()
	log := s.Log.WithField("run_id", runID)

	summary := utils.RunSummary{
		Command:    "saida",
		RunID:      runID,
		StartTime:  start,
		OutputFile: s.Lines.Path(),
	}

	// =========================================================================
	// STEP 1: DECIDE MODE
	// =========================================================================

	last, err := s.Tracker.Read()
	switch {
	case errors.Is(err, runstate.ErrNoState):
		last = nil
	case err != nil:
		log.WithError(err).Warn("run state unreadable, treating as absent")
		summary.Warnings = append(summary.Warnings, "run state unreadable: "+err.Error())
		last = nil
	}

	plan := runstate.Decide(opts.Options, last, s.Lines.Exists(), cfg.Incremental.Window(), start)
	summary.Mode = string(plan.Mode)
	if plan.Cutoff != nil {
		summary.Cutoff = plan.Cutoff.Format("2006-01-02 15:04:05")
	}
	log = log.WithField("mode", plan.Mode)
	log.WithFields(logrus.Fields{"cutoff": summary.Cutoff, "merge": plan.Merge}).Info("run started")

	report := &SaidaReport{Plan: plan}

	// =========================================================================
	// STEP 2: EXTRACT
	// =========================================================================

	records, err := s.Source.Movements(ctx, plan.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("extract movements: %w", err)
	}
	summary.RecordsExtracted = len(records)
	if n := transform.SynthesizeGrades(records); n > 0 {
		log.WithField("count", n).Debug("grade codes synthesized")
	}
	log.WithField("rows", len(records)).Info("movements extracted")

	records, undated := transform.DropUndated(records)
	if undated > 0 {
		log.WithField("count", undated).Warn("movements without a date skipped")
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%d movement(s) without a date skipped", undated))
	}

	if len(records) == 0 && plan.Merge {
		return s.emptyWindow(ctx, report, &summary, last, start, log)
	}

	// =========================================================================
	// STEP 3: CLASSIFY AND AGGREGATE
	// =========================================================================

	classified := transform.NewClassifier(cfg.Report).Classify(records)
	lines := transform.Aggregate(classified)
	summary.LinesBuilt = len(lines)
	log.WithFields(logrus.Fields{"movements": len(classified), "lines": len(lines)}).Info("movements aggregated")

	// =========================================================================
	// STEP 4: ENRICH
	// =========================================================================

	useCache := plan.Mode != runstate.ModeFull && cfg.Incremental.CacheEnabled()
	refs, err := s.fetchReferences(ctx, useCache, &summary)
	if err != nil {
		return nil, err
	}
	catalog := transform.BuildCatalog(refs)
	matched := transform.Enrich(lines, catalog)
	log.WithFields(logrus.Fields{"products": catalog.Len(), "matched": matched}).Debug("lines enriched")

	// =========================================================================
	// STEP 5: MERGE
	// =========================================================================

	final := lines
	if plan.Merge {
		existing, err := s.Lines.Load()
		if err != nil {
			return nil, fmt.Errorf("load previous output: %w", err)
		}
		res := merge.Upsert(existing, lines)
		final = res.Lines
		summary.LinesUpdated = res.Updated
		summary.LinesInserted = res.Inserted
		summary.LinesKept = res.Kept
		log.WithFields(logrus.Fields{
			"updated":  res.Updated,
			"inserted": res.Inserted,
			"kept":     res.Kept,
		}).Info("lines merged")
	} else {
		merge.Sort(final)
		summary.LinesInserted = len(final)
	}
	summary.TotalLines = len(final)

	// =========================================================================
	// STEP 6: VALIDATE AND SAVE
	// =========================================================================

	result := validation.NewValidator().ValidateLines(final)
	for _, e := range result.Errors {
		if e.Severity == validation.SeverityWarning {
			log.Debug(e.Error())
		}
	}
	if result.WarningCount > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%d validation warning(s)", result.WarningCount))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	s.backup(s.Lines.Path(), &summary)
	if err := s.Lines.Save(final); err != nil {
		return nil, fmt.Errorf("save output: %w", err)
	}
	report.Written = true
	log.WithFields(logrus.Fields{"file": s.Lines.Path(), "lines": len(final)}).Info("output saved")

	// =========================================================================
	// STEP 7: RECORD STATE
	// =========================================================================

	state := runstate.RunState{
		RunID:            runID,
		Timestamp:        start,
		Mode:             plan.Mode,
		Cutoff:           plan.Cutoff,
		RecordsProcessed: len(records),
		TotalRecords:     len(final),
		DurationSeconds:  s.now().Sub(start).Seconds(),
	}
	if err := s.Tracker.Write(state); err != nil {
		return nil, fmt.Errorf("output saved but run state not recorded: %w", err)
	}
	report.State = &state

	// =========================================================================
	// STEP 8: ARTIFACTS
	// =========================================================================

	columns := cfg.Report.ReportColumns()
	table := publish.Table{
		Name:    cfg.Report.OutputName,
		Path:    s.Lines.Path(),
		Header:  columns,
		Records: store.LineRecords(final, columns),
	}

	if cfg.Report.WriteXLSX {
		s.writeXLSX(table, types.NumericColumns, &summary)
	}
	if opts.Upload {
		s.publish(ctx, table, &summary)
	}

	s.finish(&summary)
	report.Summary = summary
	log.WithField("duration", summary.EndTime.Sub(start).Round(time.Millisecond)).Info("run finished")
	return report, nil
}

// emptyWindow records the run without touching the output so the next
// cutoff keeps moving forward.
func (s *Saida) emptyWindow(ctx context.Context, report *SaidaReport, summary *utils.RunSummary, last *runstate.RunState, start time.Time, log logrus.FieldLogger) (*SaidaReport, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	total := 0
	if last != nil {
		total = last.TotalRecords
	}
	summary.TotalLines = total

	state := runstate.RunState{
		RunID:           summary.RunID,
		Timestamp:       start,
		Mode:            report.Plan.Mode,
		Cutoff:          report.Plan.Cutoff,
		TotalRecords:    total,
		DurationSeconds: s.now().Sub(start).Seconds(),
	}
	if err := s.Tracker.Write(state); err != nil {
		return nil, fmt.Errorf("record run state: %w", err)
	}
	report.State = &state

	log.Info("no new movements, output left unchanged")
	s.finish(summary)
	report.Summary = *summary
	return report, nil
}
