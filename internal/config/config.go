// =============================================================================
// Kardex Extract - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration. The
// configuration is built once at process start and passed explicitly into
// every pipeline; nothing in it is mutated afterwards.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (applyDefaults)
//   2. The YAML file given by --config (optional)
//   3. Environment variables, usually loaded from a .env file:
//        FB_HOST, FB_PORT, FB_PATH, FB_USER, FB_PASS, FB_CHARSET,
//        GOOGLE_APPLICATION_CREDENTIALS, SHEET_ID, GCS_BUCKET
//
// VALIDATION:
//   Struct-level rules are declared with `validate` tags and checked with
//   go-playground/validator. Cross-field rules live in validateConfig.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is where every artifact (CSV, XLSX, state, cache) is written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// CacheDir holds one JSON file per cached reference table.
	// Relative paths are resolved against OutputDir.
	// Default: "cache"
	CacheDir string `yaml:"cache_dir"`

	// ArchiveDir receives a copy of the previous output before it is replaced.
	// Relative paths are resolved against OutputDir.
	// Default: "archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveRetentionDays removes archived copies older than this many days.
	// Zero keeps archives forever.
	ArchiveRetentionDays int `yaml:"archive_retention_days" validate:"gte=0"`

	// ArchiveByDate files backups under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// XLSXColumnWidth is applied to every column of the spreadsheet copies.
	// Zero keeps the spreadsheet default.
	XLSXColumnWidth float64 `yaml:"xlsx_column_width" validate:"gte=0,lte=255"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the logrus formatter: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	// =========================================================================
	// SECTIONS
	// =========================================================================

	Database    DatabaseConfig    `yaml:"database"`
	Incremental IncrementalConfig `yaml:"incremental"`
	Report      ReportConfig      `yaml:"report"`
	Stock       StockConfig       `yaml:"stock"`
	Products    ProductsConfig    `yaml:"products"`
	Period      PeriodConfig      `yaml:"period"`
	Dump        DumpConfig        `yaml:"dump"`
	Sheets      SheetsConfig      `yaml:"sheets"`
	GCS         GCSConfig         `yaml:"gcs"`
}

// =============================================================================
// DATABASE CONFIGURATION
// =============================================================================

// DatabaseConfig describes how to reach the business database.
type DatabaseConfig struct {
	// Driver is the database/sql driver name.
	// Valid values: "firebirdsql", "mysql", "sqlite"
	// Default: "firebirdsql"
	Driver string `yaml:"driver" validate:"oneof=firebirdsql mysql sqlite"`

	Host string `yaml:"host"`

	// Port of the database server.
	// Default: 3369 for firebirdsql, 3306 for mysql
	Port int `yaml:"port" validate:"gte=0,lte=65535"`

	// Path is the database file (Firebird, SQLite) or schema name (MySQL).
	Path string `yaml:"path" validate:"required"`

	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Charset is the preferred connection charset. It is tried first.
	Charset string `yaml:"charset"`

	// Charsets is the fallback order tried after Charset.
	// Default: ["UTF8", "WIN1252", "ISO8859_1", "DOS850"]
	Charsets []string `yaml:"charsets"`

	// QueryTimeout bounds every extraction. Expiry is a retryable failure.
	// Default: 10m
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gt=0"`
}

// CharsetOrder returns the charsets to try, preferred first, without
// duplicates.
func (d DatabaseConfig) CharsetOrder() []string {
	var order []string
	seen := make(map[string]bool)
	add := func(cs string) {
		cs = strings.ToUpper(strings.TrimSpace(cs))
		if cs == "" || seen[cs] {
			return
		}
		seen[cs] = true
		order = append(order, cs)
	}
	add(d.Charset)
	for _, cs := range d.Charsets {
		add(cs)
	}
	return order
}

// =============================================================================
// INCREMENTAL SETTINGS
// =============================================================================

// IncrementalConfig controls the incremental movement report.
type IncrementalConfig struct {
	// SafetyWindow is subtracted from the last run timestamp to obtain the
	// extraction cutoff. It absorbs clock skew and late-visible writes.
	// Unset means 2h; an explicit "0s" disables the overlap.
	SafetyWindow *time.Duration `yaml:"safety_window" validate:"omitempty,gte=0"`

	// StateFile is the run-state record. Relative to OutputDir.
	// Default: "saida_grade_state.json"
	StateFile string `yaml:"state_file" validate:"required"`

	// CacheReferenceTables enables the reference side cache in incremental
	// and day-bounded runs.
	// Default: true
	CacheReferenceTables *bool `yaml:"cache_reference_tables"`
}

// DefaultSafetyWindow applies when safety_window is not configured.
const DefaultSafetyWindow = 2 * time.Hour

// Window returns the configured safety window, or DefaultSafetyWindow when
// none was set.
func (i IncrementalConfig) Window() time.Duration {
	if i.SafetyWindow == nil {
		return DefaultSafetyWindow
	}
	return *i.SafetyWindow
}

// CacheEnabled reports whether reference tables may be served from cache.
func (i IncrementalConfig) CacheEnabled() bool {
	return i.CacheReferenceTables == nil || *i.CacheReferenceTables
}

// =============================================================================
// REPORT SETTINGS
// =============================================================================

// ReportConfig enumerates the variation points of the movement report.
type ReportConfig struct {
	// OutputName is the base name of the CSV/XLSX files and the sheet tab.
	// Default: "SAIDA_GRADE"
	OutputName string `yaml:"output_name" validate:"required"`

	// WriteXLSX also writes a spreadsheet copy of the merged CSV.
	WriteXLSX bool `yaml:"write_xlsx"`

	// IncludeReturns keeps return lines in the output next to sales.
	// Default: true
	IncludeReturns *bool `yaml:"include_returns"`

	// CancellationAppliesToCounterSales drops counter sales whose note or
	// order carries a cancellation. Default: true. When false, counter
	// sales are kept regardless of cancellations.
	CancellationAppliesToCounterSales *bool `yaml:"cancellation_applies_to_counter_sales"`

	// Markers are the substrings matched in the movement history note.
	Markers MarkerConfig `yaml:"markers"`

	// Columns is the column set to emit, in order. Key columns are required.
	// Default: every known column.
	Columns []string `yaml:"columns"`
}

// ReturnsIncluded reports whether return lines are emitted.
func (r ReportConfig) ReturnsIncluded() bool {
	return r.IncludeReturns == nil || *r.IncludeReturns
}

// CounterSalesCancellable reports whether cancellations exclude counter
// sales.
func (r ReportConfig) CounterSalesCancellable() bool {
	return r.CancellationAppliesToCounterSales == nil || *r.CancellationAppliesToCounterSales
}

// MarkerConfig holds the history-note markers used by the classifier.
type MarkerConfig struct {
	SaleCounter  string `yaml:"sale_counter" validate:"required"`
	Withdrawal   string `yaml:"withdrawal" validate:"required"`
	Return       string `yaml:"return" validate:"required"`
	Cancellation string `yaml:"cancellation" validate:"required"`
}

// StockConfig controls the stock-by-grade report.
type StockConfig struct {
	// OutputName defaults to "ESTOQUE_GRADE".
	OutputName string `yaml:"output_name" validate:"required"`

	// ExcludeHistoryMarker drops inventory-count movements.
	// Default: "BALAN"
	ExcludeHistoryMarker string `yaml:"exclude_history_marker"`

	WriteXLSX bool `yaml:"write_xlsx"`
}

// ProductsConfig controls the product stock export.
type ProductsConfig struct {
	// OutputName defaults to "PRODUTOS_ESTOQUE_TOTAIS".
	OutputName string `yaml:"output_name" validate:"required"`

	WriteXLSX bool `yaml:"write_xlsx"`
}

// Returns bases accepted by PeriodConfig.ReturnsBasis.
const (
	ReturnsGross = "gross"
	ReturnsNet   = "net"
)

// PeriodConfig enumerates the variation points of the period sales report.
type PeriodConfig struct {
	// OutputName is the spreadsheet base name and tab.
	// Default: "RelatorioPeriodo"
	OutputName string `yaml:"output_name" validate:"required"`

	// DateColumn is the order column used as the date axis.
	// Default: "DATA_VENDA"
	DateColumn string `yaml:"date_column" validate:"required"`

	// SaleStatuses are the order statuses counted as sales.
	// Default: ["VENDA SEPD", "PEDIDO DE VENDA", "VDA HOMOLOG"]
	SaleStatuses []string `yaml:"sale_statuses"`

	// ReturnStatuses are the order statuses counted as returns.
	// Default: ["TROCA_MERC"]
	ReturnStatuses []string `yaml:"return_statuses"`

	// ExcludedStatuses are dropped before any total is computed.
	ExcludedStatuses []string `yaml:"excluded_statuses"`

	// TransportQuantityStatuses take the product count from QUANT_TRANSP;
	// other sale statuses use PSEQ_ITEM.
	// Default: ["VENDA SEPD"]
	TransportQuantityStatuses []string `yaml:"transport_quantity_statuses"`

	// ReturnsBasis values returns from the gross amount less discounts plus
	// surcharges ("gross") or from the final amount ("net").
	// Default: "gross"
	ReturnsBasis string `yaml:"returns_basis" validate:"oneof=gross net"`

	// CreditDocument is the cash document whose deferred amount counts as
	// customer credit.
	// Default: "VENDA"
	CreditDocument string `yaml:"credit_document"`

	// Columns is the daily detail column set, in order. "Data" is required.
	// Default: every detail column.
	Columns []string `yaml:"columns"`

	// DailyFactFile and SellerFactFile are the CSVs upserted by date and by
	// date and seller on every run. Relative to OutputDir.
	DailyFactFile  string `yaml:"daily_fact_file" validate:"required"`
	SellerFactFile string `yaml:"seller_fact_file" validate:"required"`
}

// DumpConfig controls the generic table dump.
type DumpConfig struct {
	// SampleRows is the number of rows copied into the XLSX sample.
	// Default: 300
	SampleRows int `yaml:"sample_rows" validate:"gte=0"`
}

// =============================================================================
// PUBLISHING SETTINGS
// =============================================================================

// SheetsConfig configures the Google Sheets publisher.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`

	// SheetName forces the tab to rewrite. Empty uses the name of the
	// published report.
	SheetName string `yaml:"sheet_name"`
}

// Enabled reports whether enough settings are present to publish.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsFile != "" && s.SpreadsheetID != ""
}

// GCSConfig configures the Cloud Storage publisher.
type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Enabled reports whether a bucket is configured.
func (g GCSConfig) Enabled() bool {
	return g.Bucket != ""
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// OutputPath joins name onto OutputDir unless name is already absolute.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

// StatePath is the absolute or OutputDir-relative run-state file.
func (c *Config) StatePath() string {
	return c.OutputPath(c.Incremental.StateFile)
}

// CachePath is the reference cache directory.
func (c *Config) CachePath() string {
	return c.OutputPath(c.CacheDir)
}

// ArchivePath is the backup directory for replaced outputs.
func (c *Config) ArchivePath() string {
	return c.OutputPath(c.ArchiveDir)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration populated with defaults only.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// LoadConfig loads the configuration from a YAML file and the environment.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. A missing file is not
//     an error; defaults and environment variables are used instead.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Environment-only setups are valid.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&config, os.LookupEnv)
	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides copies environment variables over file values.
func applyEnvOverrides(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("FB_HOST", &config.Database.Host)
	str("FB_PATH", &config.Database.Path)
	str("FB_USER", &config.Database.User)
	str("FB_PASS", &config.Database.Password)
	str("FB_CHARSET", &config.Database.Charset)
	str("GOOGLE_APPLICATION_CREDENTIALS", &config.Sheets.CredentialsFile)
	str("SHEET_ID", &config.Sheets.SpreadsheetID)
	str("GCS_BUCKET", &config.GCS.Bucket)

	if v, ok := lookup("FB_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			config.Database.Port = port
		}
	}
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.CacheDir == "" {
		config.CacheDir = "cache"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	// Database defaults.
	db := &config.Database
	if db.Driver == "" {
		db.Driver = "firebirdsql"
	}
	if db.Port == 0 {
		switch db.Driver {
		case "firebirdsql":
			db.Port = 3369
		case "mysql":
			db.Port = 3306
		}
	}
	if db.Host == "" && db.Driver != "sqlite" {
		db.Host = "localhost"
	}
	if len(db.Charsets) == 0 {
		db.Charsets = []string{"UTF8", "WIN1252", "ISO8859_1", "DOS850"}
	}
	if db.QueryTimeout == 0 {
		db.QueryTimeout = 10 * time.Minute
	}

	// Incremental defaults.
	if config.Incremental.StateFile == "" {
		config.Incremental.StateFile = "saida_grade_state.json"
	}

	// Report defaults.
	if config.Report.OutputName == "" {
		config.Report.OutputName = "SAIDA_GRADE"
	}
	m := &config.Report.Markers
	if m.SaleCounter == "" {
		m.SaleCounter = "VENDA"
	}
	if m.Withdrawal == "" {
		m.Withdrawal = "RETIRADA"
	}
	if m.Return == "" {
		m.Return = "DEVOLU"
	}
	if m.Cancellation == "" {
		m.Cancellation = "CANCEL"
	}

	// Stock defaults.
	if config.Stock.OutputName == "" {
		config.Stock.OutputName = "ESTOQUE_GRADE"
	}
	if config.Stock.ExcludeHistoryMarker == "" {
		config.Stock.ExcludeHistoryMarker = "BALAN"
	}

	// Product export defaults.
	if config.Products.OutputName == "" {
		config.Products.OutputName = "PRODUTOS_ESTOQUE_TOTAIS"
	}

	// Period report defaults.
	p := &config.Period
	if p.OutputName == "" {
		p.OutputName = "RelatorioPeriodo"
	}
	if p.DateColumn == "" {
		p.DateColumn = "DATA_VENDA"
	}
	if len(p.SaleStatuses) == 0 {
		p.SaleStatuses = []string{"VENDA SEPD", "PEDIDO DE VENDA", "VDA HOMOLOG"}
	}
	if len(p.ReturnStatuses) == 0 {
		p.ReturnStatuses = []string{"TROCA_MERC"}
	}
	if p.TransportQuantityStatuses == nil {
		p.TransportQuantityStatuses = []string{"VENDA SEPD"}
	}
	if p.ReturnsBasis == "" {
		p.ReturnsBasis = ReturnsGross
	}
	if p.CreditDocument == "" {
		p.CreditDocument = "VENDA"
	}
	if p.DailyFactFile == "" {
		p.DailyFactFile = "fato_vendas_diario.csv"
	}
	if p.SellerFactFile == "" {
		p.SellerFactFile = "fato_vendas_vendedor_diario.csv"
	}

	if config.Dump.SampleRows == 0 {
		config.Dump.SampleRows = 300
	}
}

// validateConfig validates the configuration and creates the output
// directories.
func validateConfig(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return err
	}

	if err := ValidateColumns(config.Report.Columns); err != nil {
		return err
	}
	if err := config.Period.validate(); err != nil {
		return err
	}

	// Create required directories if they don't exist.
	dirs := []string{
		config.OutputDir,
		config.CachePath(),
		config.ArchivePath(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
