package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"copytrader/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "signal-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS signals (
			id               TEXT PRIMARY KEY,
			currency_pair    TEXT NOT NULL,
			signal_type      TEXT NOT NULL,
			entry_price      DOUBLE PRECISION NOT NULL,
			stop_loss        DOUBLE PRECISION,
			take_profit      DOUBLE PRECISION,
			status           TEXT NOT NULL DEFAULT 'active',
			confidence_level SMALLINT NOT NULL DEFAULT 0,
			analysis_summary TEXT NOT NULL DEFAULT '',
			tags             TEXT[] NOT NULL DEFAULT '{}',
			copy_count       INTEGER NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_signals_pair_status ON signals (currency_pair, status);
		CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals (created_at DESC);
	`)
	return err
}

func (r *SignalRepository) UpsertSignals(ctx context.Context, signals []domain.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "signal-repo.upsert-signals")
	defer span.End()

	batch := &pgx.Batch{}
	for _, s := range signals {
		batch.Queue(
			`INSERT INTO signals (id, currency_pair, signal_type, entry_price, stop_loss, take_profit,
			                      status, confidence_level, analysis_summary, tags, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO UPDATE SET
			     status = EXCLUDED.status,
			     stop_loss = EXCLUDED.stop_loss,
			     take_profit = EXCLUDED.take_profit,
			     analysis_summary = EXCLUDED.analysis_summary`,
			s.ID,
			strings.ToUpper(s.CurrencyPair),
			string(s.SignalType),
			s.EntryPrice,
			s.StopLoss,
			s.TakeProfit,
			string(s.Status),
			int16(s.ConfidenceLevel),
			s.AnalysisSummary,
			s.Tags,
			s.CreatedAt.UTC(),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range signals {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SignalRepository) GetSignal(ctx context.Context, id string) (*domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.get-signal")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, currency_pair, signal_type, entry_price, stop_loss, take_profit,
		        status, confidence_level, analysis_summary, tags, copy_count, created_at
		 FROM signals
		 WHERE id = $1`,
		id,
	)

	s, err := scanSignal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SignalRepository) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list-signals")
	defer span.End()

	args := make([]any, 0, 4)
	var sb strings.Builder
	sb.WriteString(`SELECT id, currency_pair, signal_type, entry_price, stop_loss, take_profit,
	       status, confidence_level, analysis_summary, tags, copy_count, created_at
	FROM signals
	WHERE 1=1`)

	if filter.Pair != "" {
		args = append(args, strings.ToUpper(filter.Pair))
		sb.WriteString(fmt.Sprintf(" AND currency_pair = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		sb.WriteString(fmt.Sprintf(" AND signal_type = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := make([]domain.Signal, 0, limit)
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, *s)
	}
	return signals, rows.Err()
}

// IncrementCopyCount bumps the counter after a successful copy. Missing
// signals are a no-op; the copy already validated existence.
func (r *SignalRepository) IncrementCopyCount(ctx context.Context, id string) error {
	_, span := r.tracer.Start(ctx, "signal-repo.increment-copy-count")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE signals SET copy_count = copy_count + 1 WHERE id = $1`,
		id,
	)
	return err
}

func (r *SignalRepository) UpdateStatus(ctx context.Context, id string, status domain.SignalStatus) error {
	_, span := r.tracer.Start(ctx, "signal-repo.update-status")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE signals SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	return err
}

func scanSignal(row pgx.Row) (*domain.Signal, error) {
	var s domain.Signal
	var signalType, status string
	var confidence int16
	if err := row.Scan(
		&s.ID,
		&s.CurrencyPair,
		&signalType,
		&s.EntryPrice,
		&s.StopLoss,
		&s.TakeProfit,
		&status,
		&confidence,
		&s.AnalysisSummary,
		&s.Tags,
		&s.CopyCount,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.SignalType = domain.SignalType(signalType)
	s.Status = domain.SignalStatus(status)
	s.ConfidenceLevel = int(confidence)
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
