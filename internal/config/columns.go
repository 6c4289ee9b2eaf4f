package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// ValidateColumns checks a configured column set. An empty set means every
// known column. Unknown names, duplicates and missing key columns are errors.
func ValidateColumns(columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	known := make(map[string]bool, len(types.LineColumns))
	for _, c := range types.LineColumns {
		known[c] = true
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		name := strings.ToUpper(strings.TrimSpace(c))
		if !known[name] {
			return fmt.Errorf("report.columns: unknown column %q", c)
		}
		if seen[name] {
			return fmt.Errorf("report.columns: duplicate column %q", c)
		}
		seen[name] = true
	}

	for _, k := range types.KeyColumns {
		if !seen[k] {
			return fmt.Errorf("report.columns: key column %s is required", k)
		}
	}
	return nil
}

// ReportColumns returns the effective, upper-cased column set.
func (r ReportConfig) ReportColumns() []string {
	if len(r.Columns) == 0 {
		return append([]string(nil), types.LineColumns...)
	}
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

// validate checks the period settings that struct tags cannot express.
func (p PeriodConfig) validate() error {
	if !sqlIdentifier.MatchString(p.DateColumn) {
		return fmt.Errorf("period.date_column: invalid column name %q", p.DateColumn)
	}

	sales := make(map[string]bool)
	for _, s := range p.SaleStatuses {
		sales[NormalizeStatus(s)] = true
	}
	for _, s := range p.ReturnStatuses {
		if sales[NormalizeStatus(s)] {
			return fmt.Errorf("period: status %q is both a sale and a return", s)
		}
	}

	if len(p.Columns) == 0 {
		return nil
	}
	known := make(map[string]bool, len(types.PeriodDetailColumns))
	for _, c := range types.PeriodDetailColumns {
		known[c] = true
	}
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		if !known[c] {
			return fmt.Errorf("period.columns: unknown column %q", c)
		}
		if seen[c] {
			return fmt.Errorf("period.columns: duplicate column %q", c)
		}
		seen[c] = true
	}
	if !seen[types.ColPeriodDate] {
		return fmt.Errorf("period.columns: column %s is required", types.ColPeriodDate)
	}
	return nil
}

// DetailColumns returns the effective daily detail column set.
func (p PeriodConfig) DetailColumns() []string {
	if len(p.Columns) == 0 {
		return append([]string(nil), types.PeriodDetailColumns...)
	}
	return append([]string(nil), p.Columns...)
}

// NormalizeStatus trims and upper-cases an order status for comparison.
func NormalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)
