package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"

	domain "github.com/okian/salarycast/internal/domain/dataset"
)

// ErrInvalidTableName is returned for table names that are not plain identifiers.
var ErrInvalidTableName = errors.New("invalid table name")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads every row of one table. Values are read as text.
type SQLiteSource struct {
	Path  string
	Table string
}

// NewSQLite returns a source for table in the database at path.
func NewSQLite(path, table string) (*SQLiteSource, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	return &SQLiteSource{Path: path, Table: table}, nil
}

// Load opens the database and copies the table into memory.
func (s *SQLiteSource) Load(ctx context.Context) (*domain.Table, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+s.Table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	tbl := domain.NewTable(headers, nil)

	cells := make([]sql.NullString, len(headers))
	dest := make([]any, len(headers))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", tbl.Len()+1, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		tbl.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyTable, s.Table)
	}
	return tbl, nil
}
