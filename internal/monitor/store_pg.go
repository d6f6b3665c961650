package monitor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgHistory persists cycle records and cumulative snapshots to
// Postgres for long-term reporting. The sink is optional; the monitor
// runs unchanged without a configured DSN.
type PgHistory struct {
	pool *pgxpool.Pool
}

func NewPgHistory(pool *pgxpool.Pool) *PgHistory {
	return &PgHistory{pool: pool}
}

func OpenPgHistory(ctx context.Context, cfg DatabaseConfig) (*PgHistory, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store := NewPgHistory(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PgHistory) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS cycles (
		id          BIGSERIAL PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		record      JSONB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create cycles table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		id           BIGSERIAL PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		stats        JSONB NOT NULL,
		cycle_count  INT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

// AppendCycle stores one finished cycle.
func (s *PgHistory) AppendCycle(ctx context.Context, report Report) error {
	record, err := json.Marshal(RecordFromReport(report))
	if err != nil {
		return fmt.Errorf("encode cycle record: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cycles (recorded_at, record) VALUES ($1, $2)`,
		report.Timestamp, record)
	if err != nil {
		return fmt.Errorf("insert cycle record: %w", err)
	}
	return nil
}

// SaveSnapshot stores the final cumulative stats for a finished run.
func (s *PgHistory) SaveSnapshot(ctx context.Context, stats *Stats) error {
	payload, err := json.Marshal(stats.Snapshot())
	if err != nil {
		return fmt.Errorf("encode stats snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (stats, cycle_count) VALUES ($1, $2)`,
		payload, stats.TotalCycles)
	if err != nil {
		return fmt.Errorf("insert stats snapshot: %w", err)
	}
	return nil
}

func (s *PgHistory) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
