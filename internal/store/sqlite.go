package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

// sqliteTime is a fixed-width UTC layout so created_at sorts lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

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
		"PRAGMA foreign_keys=ON",
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
	kind       TEXT NOT NULL,
	profile    TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_entries (
	run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	opportunity_id TEXT NOT NULL,
	city           TEXT NOT NULL,
	score          REAL NOT NULL,
	str_score      REAL,
	drivers        TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_entries_opportunity ON run_entries(opportunity_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	if err := prepare(run); err != nil {
		return err
	}
	profile, err := marshalProfile(run.Profile)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	var profileArg any
	if profile != nil {
		profileArg = string(profile)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, profile, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(run.Kind), profileArg, run.CreatedAt.UTC().Format(sqliteTime),
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_entries (run_id, position, opportunity_id, city, score, str_score, drivers)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare entry insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, e := range run.Entries {
		drivers, err := marshalDrivers(e.Drivers)
		if err != nil {
			return err
		}
		var strScore any
		if e.StrScore != nil {
			strScore = *e.StrScore
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.OpportunityID, e.City, e.Score, strScore, string(drivers)); err != nil {
			return eris.Wrapf(err, "sqlite: insert entry %s", e.OpportunityID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var (
		run       model.Run
		kind      string
		profile   sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, profile, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &kind, &profile, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	run.Kind = model.RunKind(kind)
	if run.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if profile.Valid {
		if run.Profile, err = unmarshalProfile([]byte(profile.String)); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT opportunity_id, city, score, str_score, drivers
		 FROM run_entries WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query entries %s", id)
	}
	defer rows.Close() //nolint:errcheck

	run.Entries = []model.RunEntry{}
	for rows.Next() {
		var (
			e        model.RunEntry
			strScore sql.NullFloat64
			drivers  string
		)
		if err := rows.Scan(&e.OpportunityID, &e.City, &e.Score, &strScore, &drivers); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		if strScore.Valid {
			v := strScore.Float64
			e.StrScore = &v
		}
		if e.Drivers, err = unmarshalDrivers([]byte(drivers)); err != nil {
			return nil, err
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate entries")
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	query := `
		SELECT r.id, r.kind, r.created_at, COUNT(e.position), COALESCE(MAX(e.score), 0)
		FROM runs r
		LEFT JOIN run_entries e ON e.run_id = r.id`
	args := []any{}
	if filter.Kind != "" {
		query += ` WHERE r.kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` GROUP BY r.id, r.kind, r.created_at ORDER BY r.created_at DESC, r.id LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var out []RunSummary
	for rows.Next() {
		var (
			rs        RunSummary
			kind      string
			createdAt string
		)
		if err := rows.Scan(&rs.ID, &kind, &createdAt, &rs.Entries, &rs.TopScore); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run summary")
		}
		rs.Kind = model.RunKind(kind)
		if rs.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTime, s)
	return t, eris.Wrapf(err, "sqlite: parse time %q", s)
}
