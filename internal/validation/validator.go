// =============================================================================
// Kardex Extract - Validation Engine
// =============================================================================
//
// This module checks report lines before they are persisted. A run whose
// lines fail validation never replaces the previous output.
//
// VALIDATION STRATEGY:
//   1. Field-level: key fields present, date and time formats, movement type
//   2. Document-level: at most one line per composite key
//
// ERROR HANDLING:
//   - Errors are collected, not returned on the first failure
//   - Each error carries the line number, field and offending value
//   - Warnings are reported but do not block persistence
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (blocks persistence) or SeverityWarning.
	Severity string

	Field string
	Value string

	// Rule is the check that failed, e.g. "required" or "unique_key".
	Rule string

	Message string

	// LineNumber is the 1-based position of the line in the output.
	LineNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] line %d, field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.LineNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	Errors       []*ValidationError
	ErrorCount   int
	WarningCount int

	LinesValidated int
}

// Err returns nil when the result is valid, otherwise an error listing the
// fatal findings.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	var fatal []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			fatal = append(fatal, e)
		}
	}
	return errors.New(FormatErrors(fatal))
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks report lines.
type Validator struct {
	validate *validator.Validate

	// MaxErrors stops collecting after this many fatal errors. Zero means
	// no limit.
	MaxErrors int
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(), MaxErrors: 50}
}

// ValidateLines validates the movement report before it is saved.
func (v *Validator) ValidateLines(lines []types.AggregatedLine) *ValidationResult {
	result := &ValidationResult{IsValid: true}
	seen := make(map[types.Key]int, len(lines))

	for i, line := range lines {
		if v.MaxErrors > 0 && result.ErrorCount >= v.MaxErrors {
			break
		}
		n := i + 1
		result.LinesValidated++

		for _, e := range v.validateLine(line, n) {
			result.add(e)
		}

		key := line.Key()
		if first, dup := seen[key]; dup {
			result.add(&ValidationError{
				Severity:   SeverityError,
				Field:      "key",
				Value:      fmt.Sprintf("%s|%s|%s|%s", key.GradeCode, key.Date, key.Username, key.MovementType),
				Rule:       "unique_key",
				Message:    fmt.Sprintf("duplicate of line %d", first),
				LineNumber: n,
			})
			continue
		}
		seen[key] = n
	}

	return result
}

// validateLine runs the field-level checks of one line.
func (v *Validator) validateLine(line types.AggregatedLine, n int) []*ValidationError {
	var errs []*ValidationError
	fail := func(severity, field, value, rule, msg string) {
		errs = append(errs, &ValidationError{
			Severity:   severity,
			Field:      field,
			Value:      value,
			Rule:       rule,
			Message:    msg,
			LineNumber: n,
		})
	}

	if strings.TrimSpace(line.GradeCode) == "" {
		fail(SeverityError, types.ColGradeCode, line.GradeCode, "required", "grade code is required")
	}
	if v.validate.Var(line.Date, "required,datetime=2006-01-02") != nil {
		fail(SeverityError, types.ColDate, line.Date, "date", "date must be YYYY-MM-DD")
	}
	if !line.MovementType.Valid() {
		fail(SeverityError, types.ColMovementType, string(line.MovementType), "oneof", "unknown movement type")
	}
	if line.Time != "" && v.validate.Var(line.Time, "datetime=15:04:05") != nil {
		fail(SeverityWarning, types.ColTime, line.Time, "time", "time should be HH:MM:SS")
	}
	if line.Quantity.IsNegative() {
		fail(SeverityWarning, types.ColQuantity, line.Quantity.String(), "gte", "negative quantity")
	}

	return errs
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "validation failed with %d error(s):", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&builder, "\n%d. %s", i+1, err.Error())
	}
	return builder.String()
}
