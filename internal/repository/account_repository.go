package repository

import (
	"context"
	"errors"

	"copytrader/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type AccountRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAccountRepository(pool PgxPool, tracer trace.Tracer) *AccountRepository {
	return &AccountRepository{pool: pool, tracer: tracer}
}

func (r *AccountRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "account-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trading_accounts (
			id             TEXT PRIMARY KEY,
			broker         TEXT NOT NULL,
			account_number TEXT NOT NULL,
			balance        DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency       TEXT NOT NULL DEFAULT 'USD',
			leverage       DOUBLE PRECISION NOT NULL DEFAULT 1,
			api_key        TEXT NOT NULL DEFAULT '',
			api_secret     TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

func (r *AccountRepository) UpsertAccount(ctx context.Context, a *domain.TradingAccount) error {
	_, span := r.tracer.Start(ctx, "account-repo.upsert-account")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO trading_accounts (id, broker, account_number, balance, currency, leverage, api_key, api_secret)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		     broker = EXCLUDED.broker,
		     account_number = EXCLUDED.account_number,
		     balance = EXCLUDED.balance,
		     currency = EXCLUDED.currency,
		     leverage = EXCLUDED.leverage,
		     api_key = EXCLUDED.api_key,
		     api_secret = EXCLUDED.api_secret`,
		a.ID, a.Broker, a.AccountNumber, a.Balance, a.Currency, a.Leverage, a.APIKey, a.APISecret,
	)
	return err
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*domain.TradingAccount, error) {
	_, span := r.tracer.Start(ctx, "account-repo.get-account")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, broker, account_number, balance, currency, leverage, api_key, api_secret
		 FROM trading_accounts
		 WHERE id = $1`,
		id,
	)

	var a domain.TradingAccount
	err := row.Scan(&a.ID, &a.Broker, &a.AccountNumber, &a.Balance, &a.Currency, &a.Leverage, &a.APIKey, &a.APISecret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.TradingAccount, error) {
	_, span := r.tracer.Start(ctx, "account-repo.list-accounts")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, broker, account_number, balance, currency, leverage, api_key, api_secret
		 FROM trading_accounts
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.TradingAccount
	for rows.Next() {
		var a domain.TradingAccount
		if err := rows.Scan(&a.ID, &a.Broker, &a.AccountNumber, &a.Balance, &a.Currency, &a.Leverage, &a.APIKey, &a.APISecret); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AdjustBalance applies a realized P&L delta at trade close.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id string, delta float64) error {
	_, span := r.tracer.Start(ctx, "account-repo.adjust-balance")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE trading_accounts SET balance = balance + $2 WHERE id = $1`,
		id, delta,
	)
	return err
}
