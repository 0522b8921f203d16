package dataset

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS examples (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	id         TEXT NOT NULL,
	depth      INTEGER NOT NULL,
	sentence   TEXT NOT NULL,
	program    TEXT NOT NULL,
	derivation TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);
`

// SQLiteWriter stores examples in the examples table of an SQLite database.
// Every writer registers a run with a fresh id; examples of the run are committed on Close
// and discarded on Abort.
type SQLiteWriter struct {
	db    *sql.DB
	tx    *sql.Tx
	stmt  *sql.Stmt
	runID string
}

// OpenSQLite opens or creates a database at path, ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteWriter, error) {
	db, e := sql.Open("sqlite", path)
	if e != nil {
		return nil, openError(path, e)
	}
	// a single connection keeps in-memory databases alive between statements
	db.SetMaxOpenConns(1)

	sw, e := startRun(ctx, db)
	if e != nil {
		db.Close()
		return nil, openError(path, e)
	}
	return sw, nil
}

func startRun(ctx context.Context, db *sql.DB) (*SQLiteWriter, error) {
	_, e := db.ExecContext(ctx, schema)
	if e != nil {
		return nil, e
	}

	sw := &SQLiteWriter{db: db, runID: uuid.NewString()}
	sw.tx, e = db.BeginTx(ctx, nil)
	if e != nil {
		return nil, e
	}

	_, e = sw.tx.ExecContext(ctx, "INSERT INTO runs (id, started_at) VALUES (?, ?)",
		sw.runID, time.Now().UTC().Format(time.RFC3339))
	if e == nil {
		sw.stmt, e = sw.tx.PrepareContext(ctx,
			"INSERT INTO examples (run_id, id, depth, sentence, program, derivation) VALUES (?, ?, ?, ?, ?, ?)")
	}
	if e != nil {
		sw.tx.Rollback()
		return nil, e
	}
	return sw, nil
}

// RunID returns the id of the run examples are written to.
func (sw *SQLiteWriter) RunID() string {
	return sw.runID
}

func (sw *SQLiteWriter) Write(ex *Example) error {
	_, e := sw.stmt.Exec(sw.runID, ex.ID, ex.Depth, ex.Sentence, ex.Program, ex.Derivation)
	if e != nil {
		return writeError(ex.ID, e)
	}
	return nil
}

// Close commits written examples and closes the database.
func (sw *SQLiteWriter) Close() error {
	sw.stmt.Close()
	e := sw.tx.Commit()
	ce := sw.db.Close()
	if e == nil {
		e = ce
	}
	if e != nil {
		return closeError(e)
	}
	return nil
}

// Abort discards the run and its examples and closes the database.
func (sw *SQLiteWriter) Abort() error {
	sw.stmt.Close()
	e := sw.tx.Rollback()
	ce := sw.db.Close()
	if e == nil {
		e = ce
	}
	if e != nil {
		return closeError(e)
	}
	return nil
}

// ReadSQLite reads examples of a run ordered by depth and insertion order.
func ReadSQLite(ctx context.Context, db *sql.DB, runID string) ([]*Example, error) {
	rows, e := db.QueryContext(ctx,
		"SELECT id, depth, sentence, program, derivation FROM examples WHERE run_id = ? ORDER BY depth, rowid", runID)
	if e != nil {
		return nil, e
	}
	defer rows.Close()

	var result []*Example
	for rows.Next() {
		ex := &Example{}
		e = rows.Scan(&ex.ID, &ex.Depth, &ex.Sentence, &ex.Program, &ex.Derivation)
		if e != nil {
			return nil, e
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}
