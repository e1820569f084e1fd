package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recordingDB captures the SQL passed through the guard. Query always fails so
// accepted statements are observable without a live database.
type recordingDB struct {
	lastSQL string
}

var errNoDatabase = errors.New("no database in test")

func (r *recordingDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.lastSQL = sql
	return pgconn.CommandTag{}, errNoDatabase
}

func (r *recordingDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	r.lastSQL = sql
	return nil, errNoDatabase
}

func (r *recordingDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	r.lastSQL = sql
	return nil
}

func TestRunReadOnlyQueryGuard(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		accepted bool
	}{
		{"plain select", "SELECT * FROM items", true},
		{"lowercase select", "select name, price from items", true},
		{"leading whitespace", "   \n\tSELECT 1", true},
		{"mixed case", "SeLeCt count(*) from shifts", true},
		{"delete rejected", "DELETE FROM items", false},
		{"update rejected", "UPDATE items SET price = 0", false},
		{"insert rejected", "INSERT INTO items (id) VALUES ('x')", false},
		{"drop rejected", "DROP TABLE items", false},
		{"truncate rejected", "TRUNCATE items", false},
		{"cte rejected by prefix rule", "WITH t AS (SELECT 1) SELECT * FROM t", false},
		{"empty rejected", "", false},
		{"whitespace only rejected", "   ", false},
		// The guard is a prefix check, not a parser. A second statement after a
		// semicolon passes the guard; the database's own permissions are the
		// real boundary.
		{"smuggled statement passes prefix check", "select 1; drop table items", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingDB{}
			_, err := RunReadOnlyQuery(context.Background(), db, tt.query)

			if tt.accepted {
				if errors.Is(err, ErrQueryNotReadOnly) {
					t.Fatalf("RunReadOnlyQuery(%q) rejected, want accepted", tt.query)
				}
				// Accepted queries reach the database verbatim.
				if !errors.Is(err, errNoDatabase) {
					t.Fatalf("RunReadOnlyQuery(%q) error = %v, want wrapped errNoDatabase", tt.query, err)
				}
				if db.lastSQL != tt.query {
					t.Errorf("executed %q, want the original %q", db.lastSQL, tt.query)
				}
			} else {
				if !errors.Is(err, ErrQueryNotReadOnly) {
					t.Fatalf("RunReadOnlyQuery(%q) error = %v, want ErrQueryNotReadOnly", tt.query, err)
				}
				if db.lastSQL != "" {
					t.Errorf("rejected query %q still reached the database as %q", tt.query, db.lastSQL)
				}
			}
		})
	}
}
