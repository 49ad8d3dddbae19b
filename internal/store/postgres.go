package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/db"
	"github.com/sells-group/storemap-cli/internal/model"
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
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; tests pass a pgxmock pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cluster_runs (
	id          UUID PRIMARY KEY,
	source      TEXT NOT NULL,
	eps_meters  DOUBLE PRECISION NOT NULL,
	min_points  INTEGER NOT NULL,
	store_count INTEGER NOT NULL,
	clusters    JSONB NOT NULL,
	noise_ids   JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cluster_runs_source ON cluster_runs(source);
CREATE INDEX IF NOT EXISTS idx_cluster_runs_created_at ON cluster_runs(created_at);
`

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

func (s *PostgresStore) CreateRun(ctx context.Context, source string, eps float64, minPts, storeCount int, result *cluster.Result) (*model.ClusterRun, error) {
	if result == nil {
		return nil, eris.New("postgres: nil result")
	}

	run := &model.ClusterRun{
		ID:            uuid.New().String(),
		Source:        source,
		EpsMeters:     eps,
		MinPoints:     minPts,
		StoreCount:    storeCount,
		Clusters:      result.Clusters,
		NoiseStoreIDs: result.NoiseStoreIDs,
		CreatedAt:     time.Now().UTC(),
	}

	clustersJSON, err := json.Marshal(run.Clusters)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal clusters")
	}
	noiseJSON, err := json.Marshal(run.NoiseStoreIDs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal noise ids")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO cluster_runs (id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Source, run.EpsMeters, run.MinPoints, run.StoreCount,
		clustersJSON, noiseJSON, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ClusterRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at
		 FROM cluster_runs WHERE id = $1`, runID)

	run, err := scanPostgresRun(row.Scan)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "id %s", runID)
		}
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ClusterRun, error) {
	query := `SELECT id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at
		 FROM cluster_runs`
	var args []any
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += ` WHERE source = $1`
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ClusterRun
	for rows.Next() {
		run, err := scanPostgresRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate runs")
	}
	return runs, nil
}

func (s *PostgresStore) DeleteRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cluster_runs WHERE id = $1`, runID)
	if err != nil {
		return eris.Wrap(err, "postgres: delete run")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", runID)
	}
	return nil
}

// scanPostgresRun decodes one cluster_runs row via the given scan function.
func scanPostgresRun(scan func(dest ...any) error) (*model.ClusterRun, error) {
	var run model.ClusterRun
	var clustersJSON, noiseJSON []byte
	if err := scan(&run.ID, &run.Source, &run.EpsMeters, &run.MinPoints,
		&run.StoreCount, &clustersJSON, &noiseJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(clustersJSON, &run.Clusters); err != nil {
		return nil, eris.Wrap(err, "unmarshal clusters")
	}
	if err := json.Unmarshal(noiseJSON, &run.NoiseStoreIDs); err != nil {
		return nil, eris.Wrap(err, "unmarshal noise ids")
	}
	return &run, nil
}
