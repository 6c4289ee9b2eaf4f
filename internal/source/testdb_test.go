package source

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/logging"
)

const kardexDDL = `CREATE TABLE KARDEX (
	LOJA TEXT, CODIGO_PRODUTO TEXT, COD_GRADE TEXT, DESCRICAO TEXT,
	QTDE_ENTRADA REAL, QTDE_SAIDA REAL, TIPO TEXT,
	COD_GRADE_COR TEXT, COD_GRADE_TAMANHO TEXT,
	HISTORICO TEXT, NOME_USUARIO TEXT,
	DATA_MOVIMENTO TEXT, HORA_MOVIMENTO TEXT, DOCUMENTO TEXT
)`

// newTestDB creates a SQLite database with the ledger and reference tables
// and returns its path.
func newTestDB(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loja.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	base := []string{
		kardexDDL,
		`CREATE TABLE PRODUTOS (REFERENCIA TEXT, PRECO_CUST REAL, PRECO_VEND REAL, UNIDADE TEXT, MARCA TEXT, SEGMENTO TEXT, GRUPO TEXT, SUB_GRUPO TEXT)`,
		`CREATE TABLE GRUPOS (CODIGO TEXT, NOME_GRUPO TEXT)`,
		`CREATE TABLE MARCAS (CODIGO TEXT, NOME_MARCA TEXT)`,
		`CREATE TABLE PRODUTOS_SUB_GRUPO (CODIGO TEXT, DESCRICAO TEXT)`,
	}
	for _, stmt := range append(base, stmts...) {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func newTestSource(path string) *Source {
	return New(config.DatabaseConfig{Driver: DriverSQLite, Path: path}, logging.Discard())
}
