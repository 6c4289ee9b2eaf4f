package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// TableQuery builds SELECT * for a table with an optional row limit.
func TableQuery(dialect, table string, limit int) (string, error) {
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	table = strings.ToUpper(table)
	if dialect == DriverSQLite {
		table = `"` + table + `"`
	}

	switch {
	case limit <= 0:
		return "SELECT * FROM " + table, nil
	case dialect == DriverFirebird:
		return fmt.Sprintf("SELECT FIRST %d * FROM %s", limit, table), nil
	default:
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit), nil
	}
}

// Table reads a whole table (or its first limit rows).
func (s *Source) Table(ctx context.Context, table string, limit int) (*Result, error) {
	query, err := TableQuery(s.desc.Driver, table, limit)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, strings.ToUpper(table), query)
}

// ListTables returns the user tables of the database.
func (s *Source) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch s.desc.Driver {
	case DriverFirebird:
		query = `SELECT TRIM(RDB$RELATION_NAME) FROM RDB$RELATIONS
			WHERE RDB$VIEW_BLR IS NULL AND (RDB$SYSTEM_FLAG IS NULL OR RDB$SYSTEM_FLAG = 0)
			ORDER BY 1`
	case DriverMySQL:
		query = "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() ORDER BY 1"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY 1"
	}

	res, err := s.Query(ctx, "tables", query)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		names = append(names, asString(row[0]))
	}
	return names, nil
}
