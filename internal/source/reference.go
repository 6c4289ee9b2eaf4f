package source

import (
	"context"
	"fmt"
	"sort"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Reference table names.
const (
	TableProducts  = "PRODUTOS"
	TableGroups    = "GRUPOS"
	TableBrands    = "MARCAS"
	TableSubGroups = "PRODUTOS_SUB_GRUPO"
)

var referenceQueries = map[string]string{
	TableProducts:  "SELECT REFERENCIA, PRECO_CUST, PRECO_VEND, UNIDADE, MARCA, SEGMENTO, GRUPO, SUB_GRUPO FROM PRODUTOS",
	TableGroups:    "SELECT CODIGO, NOME_GRUPO FROM GRUPOS",
	TableBrands:    "SELECT CODIGO, NOME_MARCA FROM MARCAS",
	TableSubGroups: "SELECT CODIGO, DESCRICAO FROM PRODUTOS_SUB_GRUPO",
}

// ReferenceTables lists the known reference tables.
func ReferenceTables() []string {
	names := make([]string, 0, len(referenceQueries))
	for name := range referenceQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReferenceTable reads one reference table as text rows.
func (s *Source) ReferenceTable(ctx context.Context, name string) ([]types.Row, error) {
	query, ok := referenceQueries[name]
	if !ok {
		return nil, fmt.Errorf("unknown reference table %q", name)
	}
	res, err := s.Query(ctx, name, query)
	if err != nil {
		return nil, err
	}

	rows := make([]types.Row, len(res.Rows))
	for i, values := range res.Rows {
		row := make(types.Row, len(res.Columns))
		for j, col := range res.Columns {
			row[col] = asString(values[j])
		}
		rows[i] = row
	}
	return rows, nil
}
