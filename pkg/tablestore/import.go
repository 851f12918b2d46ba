package tablestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ettle/strcase"
	"go.uber.org/zap"
)

// ImportCSV replaces table with the rows of a CSV document. The header row
// names the columns: the first becomes a TEXT label column and the rest
// NUMERIC. Header names are normalized to snake_case. It returns the number
// of imported rows.
func (s *Store) ImportCSV(ctx context.Context, table string, r io.Reader) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("tablestore: csv for %s is empty", table)
		}
		return 0, fmt.Errorf("tablestore: read csv header: %w", err)
	}
	if len(header) < 2 {
		return 0, fmt.Errorf("tablestore: csv for %s needs at least two columns", table)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		column := strcase.ToSnake(strings.TrimSpace(name))
		if !identifierPattern.MatchString(column) {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
		}
		columns[i] = column
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("tablestore: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return 0, fmt.Errorf("tablestore: drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, columns)); err != nil {
		return 0, fmt.Errorf("tablestore: create %s: %w", table, err)
	}

	insert := s.insertSQL(table, columns)
	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("tablestore: read csv row %d: %w", count+1, err)
		}
		args := make([]any, len(columns))
		for i := range columns {
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			if cell == "" && i > 0 {
				args[i] = nil
				continue
			}
			args[i] = cell
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return count, fmt.Errorf("tablestore: insert into %s: %w", table, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("tablestore: commit import: %w", err)
	}
	s.Invalidate()
	s.logger.Info("csv imported", zap.String("table", table), zap.Int("rows", count))
	return count, nil
}

func createTableSQL(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, column := range columns {
		kind := "NUMERIC"
		if i == 0 {
			kind = "TEXT"
		}
		defs[i] = quoteIdent(column) + " " + kind
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func (s *Store) insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteIdent(column)
		marks[i] = s.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}
