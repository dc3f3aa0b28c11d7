// Package store persists scoring-run snapshots so past rankings can be
// listed and compared.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/resilience"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultSQLitePath = "arbitrage.db"
	defaultListLimit  = 20
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind  model.RunKind `json:"kind,omitempty"`
	Limit int           `json:"limit,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// RunSummary is a run without its entries.
type RunSummary struct {
	ID        string        `json:"id"`
	Kind      model.RunKind `json:"kind"`
	Entries   int           `json:"entries"`
	TopScore  float64       `json:"top_score"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store defines the persistence interface for scoring runs.
type Store interface {
	// SaveRun persists run and its entries atomically. A missing ID or
	// CreatedAt is filled in on run.
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Options configures Open.
type Options struct {
	Driver      string
	DatabaseURL string
	Pool        *PoolConfig
	// ConnectAttempts bounds Postgres connection retries. Zero uses the
	// resilience default.
	ConnectAttempts int
}

// Open connects to the configured backend and applies its migration.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		st  Store
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		dsn := opts.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = opts.ConnectAttempts
		retry.Operation = "postgres connect"
		st, err = resilience.DoVal(ctx, retry, func(ctx context.Context) (Store, error) {
			return NewPostgres(ctx, opts.DatabaseURL, opts.Pool)
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// prepare stamps a new run and checks it is storable.
func prepare(run *model.Run) error {
	if run == nil {
		return eris.New("store: nil run")
	}
	switch run.Kind {
	case model.RunKindRaw, model.RunKindProfile:
	default:
		return eris.Errorf("store: unknown run kind %q", run.Kind)
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return nil
}

func marshalProfile(p *model.ArbitrageProfile) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return b, eris.Wrap(err, "store: marshal profile")
}

func unmarshalProfile(b []byte) (*model.ArbitrageProfile, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var p model.ArbitrageProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal profile")
	}
	return &p, nil
}

func marshalDrivers(d []string) ([]byte, error) {
	if d == nil {
		d = []string{}
	}
	b, err := json.Marshal(d)
	return b, eris.Wrap(err, "store: marshal drivers")
}

func unmarshalDrivers(b []byte) ([]string, error) {
	var d []string
	if len(b) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal drivers")
	}
	if len(d) == 0 {
		return nil, nil
	}
	return d, nil
}
