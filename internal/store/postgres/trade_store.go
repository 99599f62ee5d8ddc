package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solsniper/internal/domain"
)

// TradeStore implements domain.TradeHistoryStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, pool_id, token_in, token_out, success, signature,
	amount_in, amount_out, actual_profit, quote_source, error, executed_at`

func scanTradeRows(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var recs []domain.TradeRecord
	for rows.Next() {
		var (
			rec         domain.TradeRecord
			signature   *string
			quoteSource *string
			tradeErr    *string
		)
		if err := rows.Scan(
			&rec.ID, &rec.PoolID, &rec.TokenIn, &rec.TokenOut,
			&rec.Result.Success, &signature,
			&rec.Result.AmountIn, &rec.Result.AmountOut, &rec.Result.ActualProfit,
			&quoteSource, &tradeErr, &rec.ExecutedAt,
		); err != nil {
			return nil, err
		}
		if signature != nil {
			rec.Result.Signature = *signature
		}
		if quoteSource != nil {
			rec.Result.QuoteSource = domain.QuoteSource(*quoteSource)
		}
		if tradeErr != nil {
			rec.Result.Error = *tradeErr
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Append inserts one trade record. Records are immutable; a duplicate id is
// silently skipped.
func (s *TradeStore) Append(ctx context.Context, rec domain.TradeRecord) error {
	const query = `
		INSERT INTO trade_history (
			id, pool_id, token_in, token_out, success, signature,
			amount_in, amount_out, actual_profit, quote_source, error, executed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12
		) ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.PoolID, rec.TokenIn, rec.TokenOut,
		rec.Result.Success, nullable(rec.Result.Signature),
		rec.Result.AmountIn, rec.Result.AmountOut, rec.Result.ActualProfit,
		nullable(string(rec.Result.QuoteSource)), nullable(rec.Result.Error),
		rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append trade %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecent returns the most recent trade records, newest first.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM trade_history ORDER BY executed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

// ListBefore returns every record executed strictly before the cutoff, oldest
// first. Used by the archiver to page aged history out.
func (s *TradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM trade_history WHERE executed_at < $1 ORDER BY executed_at ASC`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before %v: %w", before, err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

// DeleteBefore removes every record executed strictly before the cutoff and
// returns the number deleted.
func (s *TradeStore) DeleteBefore(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM trade_history WHERE executed_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trades before %v: %w", before, err)
	}
	return int(tag.RowsAffected()), nil
}

// nullable converts an empty string to NULL for optional columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
