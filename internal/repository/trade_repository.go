package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"copytrader/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type TradeRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTradeRepository(pool PgxPool, tracer trace.Tracer) *TradeRepository {
	return &TradeRepository{pool: pool, tracer: tracer}
}

func (r *TradeRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "trade-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS copied_trades (
			id              TEXT PRIMARY KEY,
			signal_id       TEXT NOT NULL,
			account_id      TEXT NOT NULL,
			broker_order_id TEXT NOT NULL DEFAULT '',
			currency_pair   TEXT NOT NULL,
			direction       TEXT NOT NULL,
			entry_price     DOUBLE PRECISION NOT NULL,
			stop_loss       DOUBLE PRECISION,
			take_profit     DOUBLE PRECISION,
			lot_size        DOUBLE PRECISION NOT NULL,
			status          TEXT NOT NULL DEFAULT 'pending',
			open_time       TIMESTAMPTZ NOT NULL,
			close_time      TIMESTAMPTZ,
			profit          DOUBLE PRECISION,
			pips            DOUBLE PRECISION
		);
		CREATE INDEX IF NOT EXISTS idx_copied_trades_account ON copied_trades (account_id, status);
		CREATE INDEX IF NOT EXISTS idx_copied_trades_signal ON copied_trades (signal_id);
	`)
	return err
}

func (r *TradeRepository) InsertTrade(ctx context.Context, t *domain.CopiedTrade) error {
	_, span := r.tracer.Start(ctx, "trade-repo.insert-trade")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO copied_trades (id, signal_id, account_id, broker_order_id, currency_pair,
		                            direction, entry_price, stop_loss, take_profit, lot_size,
		                            status, open_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID,
		t.SignalID,
		t.AccountID,
		t.BrokerOrderID,
		strings.ToUpper(t.CurrencyPair),
		string(t.Direction),
		t.EntryPrice,
		t.StopLoss,
		t.TakeProfit,
		t.LotSize,
		string(t.Status),
		t.OpenTime.UTC(),
	)
	return err
}

func (r *TradeRepository) GetTrade(ctx context.Context, id string) (*domain.CopiedTrade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.get-trade")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, signal_id, account_id, broker_order_id, currency_pair, direction,
		        entry_price, stop_loss, take_profit, lot_size, status, open_time,
		        close_time, profit, pips
		 FROM copied_trades
		 WHERE id = $1`,
		id,
	)

	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TradeRepository) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.list-trades")
	defer span.End()

	args := make([]any, 0, 3)
	var sb strings.Builder
	sb.WriteString(`SELECT id, signal_id, account_id, broker_order_id, currency_pair, direction,
	       entry_price, stop_loss, take_profit, lot_size, status, open_time,
	       close_time, profit, pips
	FROM copied_trades
	WHERE 1=1`)

	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		sb.WriteString(fmt.Sprintf(" AND account_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY open_time DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]domain.CopiedTrade, 0, limit)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// MarkOpen records the broker fill for a previously inserted pending trade.
func (r *TradeRepository) MarkOpen(ctx context.Context, id, brokerOrderID string) error {
	_, span := r.tracer.Start(ctx, "trade-repo.mark-open")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE copied_trades SET status = 'open', broker_order_id = $2 WHERE id = $1`,
		id, brokerOrderID,
	)
	return err
}

func (r *TradeRepository) CloseTrade(ctx context.Context, t *domain.CopiedTrade) error {
	_, span := r.tracer.Start(ctx, "trade-repo.close-trade")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE copied_trades SET status = 'closed', close_time = $2, profit = $3, pips = $4 WHERE id = $1`,
		t.ID, t.CloseTime, t.Profit, t.Pips,
	)
	return err
}

func scanTrade(row pgx.Row) (*domain.CopiedTrade, error) {
	var t domain.CopiedTrade
	var direction, status string
	if err := row.Scan(
		&t.ID,
		&t.SignalID,
		&t.AccountID,
		&t.BrokerOrderID,
		&t.CurrencyPair,
		&direction,
		&t.EntryPrice,
		&t.StopLoss,
		&t.TakeProfit,
		&t.LotSize,
		&status,
		&t.OpenTime,
		&t.CloseTime,
		&t.Profit,
		&t.Pips,
	); err != nil {
		return nil, err
	}
	t.Direction = domain.SignalType(direction)
	t.Status = domain.TradeStatus(status)
	t.OpenTime = t.OpenTime.UTC()
	return &t, nil
}
