package lookup

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Loader for migration snapshots kept as a SQLite database with two tables:
//
//	CREATE TABLE product (id INTEGER PRIMARY KEY, path TEXT NOT NULL);
//	CREATE TABLE sitetree (id INTEGER PRIMARY KEY, url_segment TEXT,
//	                       kind TEXT, product_id INTEGER);

// LoadSQLite reads both tables from the snapshot database at path.
func LoadSQLite(path string) (*Tables, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("unable to open lookup snapshot: %w", err)
	}
	defer conn.Close()

	tables := NewTables()

	err = sqlitex.Execute(conn, `SELECT id, path FROM product`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tables.ProductPathByID[stmt.ColumnInt64(0)] = stmt.ColumnText(1)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read product table: %w", err)
	}

	err = sqlitex.Execute(conn, `SELECT id, url_segment, kind, product_id FROM sitetree`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tables.SiteNodeByID[stmt.ColumnInt64(0)] = SiteNode{
				URLSegment: stmt.ColumnText(1),
				Kind:       stmt.ColumnText(2),
				ProductID:  stmt.ColumnInt64(3),
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read site tree table: %w", err)
	}

	return tables, nil
}
