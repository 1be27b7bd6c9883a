package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/spatial-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	attribute  TEXT NOT NULL,
	rule       TEXT NOT NULL,
	alpha      REAL NOT NULL,
	global     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_units (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	unit_index INTEGER NOT NULL,
	unit_id    TEXT NOT NULL,
	local_i    REAL,
	z_score    REAL,
	p_value    REAL,
	label      TEXT NOT NULL,
	PRIMARY KEY (run_id, unit_index)
);

CREATE INDEX IF NOT EXISTS idx_runs_attribute ON runs(attribute);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun implements Store. Assigns the run an ID and timestamp if empty.
// Undefined local statistics persist as NULLs so they stay distinguishable
// from genuine zeros when read back.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	if run.Result == nil {
		return eris.New("sqlite: run has no result")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	ruleJSON, err := json.Marshal(run.Rule)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal rule")
	}
	globalJSON, err := json.Marshal(run.Result.Global)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal global result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, attribute, rule, alpha, global, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Attribute, string(ruleJSON), run.Alpha, string(globalJSON), run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_units (run_id, unit_index, unit_id, local_i, z_score, p_value, label) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare unit insert")
	}
	defer stmt.Close()

	for _, u := range run.Result.Units {
		localI, zScore, pValue := sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}
		if u.Local.Defined {
			localI = sql.NullFloat64{Float64: u.Local.I, Valid: true}
			zScore = sql.NullFloat64{Float64: u.Local.ZScore, Valid: true}
			pValue = sql.NullFloat64{Float64: u.Local.PValue, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, u.Index, u.UnitID, localI, zScore, pValue, string(u.Label)); err != nil {
			return eris.Wrapf(err, "sqlite: insert unit %d", u.Index)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}

// GetRun implements Store.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	run, err := s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, source, attribute, rule, alpha, global, created_at FROM runs WHERE id = ?`, id,
	))
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: run %s not found", id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_index, unit_id, local_i, z_score, p_value, label FROM run_units WHERE run_id = ? ORDER BY unit_index`, id,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query run units")
	}
	defer rows.Close()

	for rows.Next() {
		var u model.UnitResult
		var localI, zScore, pValue sql.NullFloat64
		var label string
		if err := rows.Scan(&u.Index, &u.UnitID, &localI, &zScore, &pValue, &label); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run unit")
		}
		u.Label = model.Label(label)
		u.Local = model.LocalResult{Index: u.Index}
		if localI.Valid {
			u.Local.Defined = true
			u.Local.I = localI.Float64
			u.Local.ZScore = zScore.Float64
			u.Local.PValue = pValue.Float64
		}
		run.Result.Units = append(run.Result.Units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate run units")
	}
	return run, nil
}

// ListRuns implements Store.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, attribute, rule, alpha, global, created_at FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
	}
	return runs, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var ruleJSON, globalJSON string
	if err := row.Scan(&run.ID, &run.Source, &run.Attribute, &ruleJSON, &run.Alpha, &globalJSON, &run.CreatedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(ruleJSON), &run.Rule); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal rule")
	}
	run.Result = &model.RunResult{}
	if err := json.Unmarshal([]byte(globalJSON), &run.Result.Global); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal global result")
	}
	return &run, nil
}
