package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/db"
	"github.com/sells-group/arbitrage-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var entryColumns = []string{"run_id", "position", "opportunity_id", "city", "score", "str_score", "drivers"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool exposes the underlying pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	profile    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_entries (
	run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	opportunity_id TEXT NOT NULL,
	city           TEXT NOT NULL,
	score          DOUBLE PRECISION NOT NULL,
	str_score      DOUBLE PRECISION,
	drivers        JSONB NOT NULL DEFAULT '[]',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_entries_opportunity ON run_entries(opportunity_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run) error {
	if err := prepare(run); err != nil {
		return err
	}
	profile, err := marshalProfile(run.Profile)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(run.Entries))
	for i, e := range run.Entries {
		drivers, err := marshalDrivers(e.Drivers)
		if err != nil {
			return err
		}
		rows = append(rows, []any{run.ID, int32(i), e.OpportunityID, e.City, e.Score, e.StrScore, drivers})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO runs (id, kind, profile, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID, string(run.Kind), profile, run.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	if _, err := db.CopyFrom(ctx, tx, "run_entries", entryColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy entries for run %s", run.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit run")
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var (
		run     model.Run
		kind    string
		profile []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, profile, created_at FROM runs WHERE id = $1`, id,
	).Scan(&run.ID, &kind, &profile, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("run not found: %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	run.Kind = model.RunKind(kind)
	run.CreatedAt = run.CreatedAt.UTC()
	if run.Profile, err = unmarshalProfile(profile); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT opportunity_id, city, score, str_score, drivers
		 FROM run_entries WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query entries %s", id)
	}
	defer rows.Close()

	run.Entries = []model.RunEntry{}
	for rows.Next() {
		var (
			e       model.RunEntry
			drivers []byte
		)
		if err := rows.Scan(&e.OpportunityID, &e.City, &e.Score, &e.StrScore, &drivers); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		if e.Drivers, err = unmarshalDrivers(drivers); err != nil {
			return nil, err
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate entries")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	query := `
		SELECT r.id, r.kind, r.created_at, COUNT(e.position), COALESCE(MAX(e.score), 0)
		FROM runs r
		LEFT JOIN run_entries e ON e.run_id = r.id`
	args := []any{}
	argIdx := 1

	if filter.Kind != "" {
		query += fmt.Sprintf(` WHERE r.kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	query += fmt.Sprintf(` GROUP BY r.id, r.kind, r.created_at ORDER BY r.created_at DESC, r.id LIMIT $%d`, argIdx)
	args = append(args, filter.limit())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs    RunSummary
			kind  string
			count int64
		)
		if err := rows.Scan(&rs.ID, &kind, &rs.CreatedAt, &count, &rs.TopScore); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run summary")
		}
		rs.Kind = model.RunKind(kind)
		rs.Entries = int(count)
		rs.CreatedAt = rs.CreatedAt.UTC()
		out = append(out, rs)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
