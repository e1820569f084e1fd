package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrQueryNotReadOnly is returned when a raw query fails the read-only guard.
var ErrQueryNotReadOnly = errors.New("only SELECT queries are allowed")

// QueryResult holds the rows of an accepted raw query, in return order.
type QueryResult struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// RunReadOnlyQuery executes an arbitrary query after a read-only guard check.
// The guard normalizes the input (trim, case-fold) and rejects anything whose
// normalized form does not begin with "select". It is a prefix check, not a
// parser: a statement smuggled after a semicolon is not detected. Defense in
// depth, not a sandbox.
func RunReadOnlyQuery(ctx context.Context, db DBTX, raw string) (*QueryResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(normalized, "select") {
		return nil, ErrQueryNotReadOnly
	}

	rows, err := db.Query(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &QueryResult{Rows: []map[string]any{}}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
