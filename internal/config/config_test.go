package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FB_HOST", "FB_PORT", "FB_PATH", "FB_USER", "FB_PASS", "FB_CHARSET", "GOOGLE_APPLICATION_CREDENTIALS", "SHEET_ID", "GCS_BUCKET"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "out")
	path := writeConfig(t, "output_dir: "+out+"\ndatabase:\n  path: /data/LOJA.FDB\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "firebirdsql", cfg.Database.Driver)
	assert.Equal(t, 3369, cfg.Database.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, []string{"UTF8", "WIN1252", "ISO8859_1", "DOS850"}, cfg.Database.Charsets)
	assert.Equal(t, 10*time.Minute, cfg.Database.QueryTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Incremental.Window())
	assert.True(t, cfg.Incremental.CacheEnabled())
	assert.Equal(t, "SAIDA_GRADE", cfg.Report.OutputName)
	assert.True(t, cfg.Report.ReturnsIncluded())
	assert.True(t, cfg.Report.CounterSalesCancellable())
	assert.Equal(t, "CANCEL", cfg.Report.Markers.Cancellation)
	assert.Equal(t, "ESTOQUE_GRADE", cfg.Stock.OutputName)
	assert.Equal(t, 300, cfg.Dump.SampleRows)
	assert.Equal(t, filepath.Join(out, "saida_grade_state.json"), cfg.StatePath())

	assert.DirExists(t, out)
	assert.DirExists(t, cfg.CachePath())
	assert.DirExists(t, cfg.ArchivePath())
}

func TestLoadConfigMissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FB_PATH", "/srv/base.fdb")
	t.Setenv("FB_PORT", "3050")
	t.Setenv("FB_CHARSET", "win1252")

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/base.fdb", cfg.Database.Path)
	assert.Equal(t, 3050, cfg.Database.Port)
	assert.Equal(t, []string{"WIN1252", "UTF8", "ISO8859_1", "DOS850"}, cfg.Database.CharsetOrder())
}

func TestLoadConfigEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FB_USER", "SYSDBA")
	t.Setenv("SHEET_ID", "sheet-123")

	path := writeConfig(t, `output_dir: `+t.TempDir()+`
database:
  path: /data/LOJA.FDB
  user: reader
sheets:
  credentials_file: creds.json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "SYSDBA", cfg.Database.User)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.True(t, cfg.Sheets.Enabled())
	assert.Empty(t, cfg.Sheets.SheetName)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"driver":    "database:\n  driver: oracle\n  path: x\n",
		"log level": "log_level: loud\ndatabase:\n  path: x\n",
		"no path":   "log_level: info\n",
		"columns":   "database:\n  path: x\nreport:\n  columns: [COD_GRADE, QUANTIDADE]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "output_dir: "+t.TempDir()+"\n"+body)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigParsesDurationsAndFlags(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `output_dir: `+t.TempDir()+`
database:
  driver: sqlite
  path: replica.db
  query_timeout: 30s
incremental:
  safety_window: 45m
  cache_reference_tables: false
report:
  include_returns: false
  cancellation_applies_to_counter_sales: false
  columns: [cod_grade, data_movimento, nome_usuario, tipo_movimento, quantidade]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 45*time.Minute, cfg.Incremental.Window())
	assert.False(t, cfg.Incremental.CacheEnabled())
	assert.False(t, cfg.Report.ReturnsIncluded())
	assert.False(t, cfg.Report.CounterSalesCancellable())
	assert.Equal(t, 0, cfg.Database.Port)
	assert.Empty(t, cfg.Database.Host)
	assert.Equal(t, []string{"COD_GRADE", "DATA_MOVIMENTO", "NOME_USUARIO", "TIPO_MOVIMENTO", "QUANTIDADE"}, cfg.Report.ReportColumns())
}

func TestLoadConfigSafetyWindowZeroIsKept(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "output_dir: "+t.TempDir()+"\ndatabase:\n  path: x\nincremental:\n  safety_window: 0s\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Incremental.SafetyWindow)
	assert.Equal(t, time.Duration(0), cfg.Incremental.Window())

	path = writeConfig(t, "output_dir: "+t.TempDir()+"\ndatabase:\n  path: x\nincremental:\n  safety_window: -5m\n")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnvOverridesIgnoresBadPort(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Port: 3369}}
	env := map[string]string{"FB_PORT": "abc", "FB_HOST": "  db.local "}
	applyEnvOverrides(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, 3369, cfg.Database.Port)
	assert.Equal(t, "db.local", cfg.Database.Host)
}

func TestLoadConfigReportDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeConfig(t, "output_dir: "+t.TempDir()+"\ndatabase:\n  path: x\n"))
	require.NoError(t, err)

	assert.Equal(t, "PRODUTOS_ESTOQUE_TOTAIS", cfg.Products.OutputName)
	assert.Zero(t, cfg.XLSXColumnWidth)

	p := cfg.Period
	assert.Equal(t, "RelatorioPeriodo", p.OutputName)
	assert.Equal(t, "DATA_VENDA", p.DateColumn)
	assert.Equal(t, []string{"VENDA SEPD", "PEDIDO DE VENDA", "VDA HOMOLOG"}, p.SaleStatuses)
	assert.Equal(t, []string{"TROCA_MERC"}, p.ReturnStatuses)
	assert.Equal(t, []string{"VENDA SEPD"}, p.TransportQuantityStatuses)
	assert.Equal(t, ReturnsGross, p.ReturnsBasis)
	assert.Equal(t, "VENDA", p.CreditDocument)
	assert.Equal(t, "fato_vendas_diario.csv", p.DailyFactFile)
	assert.Len(t, p.DetailColumns(), 12)
}

func TestLoadConfigPeriodSettings(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `output_dir: `+t.TempDir()+`
database:
  path: x
xlsx_column_width: 22
period:
  date_column: DATA_EMISSAO
  returns_basis: net
  transport_quantity_statuses: []
  columns: ["Data", "Total Líquido (A)"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 22.0, cfg.XLSXColumnWidth)
	assert.Equal(t, "DATA_EMISSAO", cfg.Period.DateColumn)
	assert.Equal(t, ReturnsNet, cfg.Period.ReturnsBasis)
	assert.Empty(t, cfg.Period.TransportQuantityStatuses, "an explicit empty list is kept")
	assert.Equal(t, []string{"Data", "Total Líquido (A)"}, cfg.Period.DetailColumns())
}

func TestLoadConfigRejectsInvalidPeriod(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"date column":    "period:\n  date_column: \"DATA; DROP\"\n",
		"sale is return": "period:\n  sale_statuses: [VENDA SEPD]\n  return_statuses: [' venda sepd']\n",
		"unknown column": "period:\n  columns: [Data, Lucro]\n",
		"duplicate":      "period:\n  columns: [Data, Data]\n",
		"no date":        "period:\n  columns: [Desconto]\n",
		"returns basis":  "period:\n  returns_basis: liquid\n",
		"column width":   "xlsx_column_width: 300\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "output_dir: "+t.TempDir()+"\ndatabase:\n  path: x\n"+body)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
