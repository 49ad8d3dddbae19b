package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS cluster_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	eps_meters  REAL NOT NULL,
	min_points  INTEGER NOT NULL,
	store_count INTEGER NOT NULL,
	clusters    TEXT NOT NULL,
	noise_ids   TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cluster_runs_source ON cluster_runs(source);
CREATE INDEX IF NOT EXISTS idx_cluster_runs_created_at ON cluster_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string, eps float64, minPts, storeCount int, result *cluster.Result) (*model.ClusterRun, error) {
	if result == nil {
		return nil, eris.New("sqlite: nil result")
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
		return nil, eris.Wrap(err, "sqlite: marshal clusters")
	}
	noiseJSON, err := json.Marshal(run.NoiseStoreIDs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal noise ids")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cluster_runs (id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.EpsMeters, run.MinPoints, run.StoreCount,
		string(clustersJSON), string(noiseJSON), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ClusterRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at
		 FROM cluster_runs WHERE id = ?`, runID)

	run, err := scanSQLiteRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "id %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ClusterRun, error) {
	query := `SELECT id, source, eps_meters, min_points, store_count, clusters, noise_ids, created_at
		 FROM cluster_runs`
	var args []any
	if filter.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ClusterRun
	for rows.Next() {
		run, err := scanSQLiteRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
	}
	return runs, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cluster_runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrap(err, "sqlite: delete run")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: delete run rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", runID)
	}
	return nil
}

// scanSQLiteRun decodes one cluster_runs row via the given scan function.
func scanSQLiteRun(scan func(dest ...any) error) (*model.ClusterRun, error) {
	var run model.ClusterRun
	var clustersJSON, noiseJSON string
	if err := scan(&run.ID, &run.Source, &run.EpsMeters, &run.MinPoints,
		&run.StoreCount, &clustersJSON, &noiseJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(clustersJSON), &run.Clusters); err != nil {
		return nil, eris.Wrap(err, "unmarshal clusters")
	}
	if err := json.Unmarshal([]byte(noiseJSON), &run.NoiseStoreIDs); err != nil {
		return nil, eris.Wrap(err, "unmarshal noise ids")
	}
	return &run, nil
}
