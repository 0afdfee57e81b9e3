package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	positionColumns = `id, user_id, brokerage_id, contract, direction, quantity, entry_price, current_price,
	status, entry_date, exit_date, exit_price, realized_pnl, fees, created_at, updated_at`
	optionColumns = `id, user_id, brokerage_id, strategy_id, contract, option_type, strike, premium,
	quantity, is_purchased, expiration_date, status, fees, created_at`
	transactionColumns = `id, user_id, brokerage_id, position_id, option_id, date, contract, type,
	quantity, price, total, fees, status, created_at`
)

// pgQueries runs the row-level queries against PostgreSQL. Numeric columns are
// scanned straight into decimals through the codec registered on the pool.
type pgQueries struct {
	pool *pgxpool.Pool
}

func scanPositionPG(s scanner) (positionRow, error) {
	var r positionRow
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.Contract, &r.Direction, &r.Quantity,
		&r.EntryPrice, &r.CurrentPrice, &r.Status, &r.EntryDate, &r.ExitDate, &r.ExitPrice,
		&r.RealizedPnL, &r.Fees, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (q *pgQueries) ListPositions(ctx context.Context) ([]positionRow, error) {
	rows, err := q.pool.Query(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY entry_date, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPositionPG)
}

func (q *pgQueries) GetPosition(ctx context.Context, id string) (positionRow, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = $1`, id)
	return scanPositionPG(row)
}

func (q *pgQueries) InsertPosition(ctx context.Context, r positionRow) error {
	_, err := q.pool.Exec(ctx, `INSERT INTO positions (`+positionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.ID, r.UserID, r.BrokerageID, r.Contract, r.Direction, r.Quantity, r.EntryPrice, r.CurrentPrice,
		r.Status, r.EntryDate, r.ExitDate, r.ExitPrice, r.RealizedPnL, r.Fees, r.CreatedAt, r.UpdatedAt)
	return err
}

func (q *pgQueries) UpdatePosition(ctx context.Context, r positionRow) (int64, error) {
	tag, err := q.pool.Exec(ctx, `UPDATE positions SET
		user_id = $2, brokerage_id = $3, contract = $4, direction = $5, quantity = $6, entry_price = $7,
		current_price = $8, status = $9, entry_date = $10, exit_date = $11, exit_price = $12,
		realized_pnl = $13, fees = $14, updated_at = $15
		WHERE id = $1`,
		r.ID, r.UserID, r.BrokerageID, r.Contract, r.Direction, r.Quantity, r.EntryPrice, r.CurrentPrice,
		r.Status, r.EntryDate, r.ExitDate, r.ExitPrice, r.RealizedPnL, r.Fees, r.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *pgQueries) DeletePosition(ctx context.Context, id string) (int64, error) {
	tag, err := q.pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanOptionPG(s scanner) (optionRow, error) {
	var r optionRow
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.StrategyID, &r.Contract, &r.OptionType,
		&r.Strike, &r.Premium, &r.Quantity, &r.IsPurchased, &r.ExpirationDate, &r.Status, &r.Fees, &r.CreatedAt)
	return r, err
}

func (q *pgQueries) ListOptions(ctx context.Context) ([]optionRow, error) {
	rows, err := q.pool.Query(ctx, `SELECT `+optionColumns+` FROM options ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOptionPG)
}

func (q *pgQueries) GetOption(ctx context.Context, id string) (optionRow, error) {
	return scanOptionPG(q.pool.QueryRow(ctx, `SELECT `+optionColumns+` FROM options WHERE id = $1`, id))
}

func (q *pgQueries) InsertOption(ctx context.Context, r optionRow) error {
	_, err := q.pool.Exec(ctx, `INSERT INTO options (`+optionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.UserID, r.BrokerageID, r.StrategyID, r.Contract, r.OptionType, r.Strike, r.Premium,
		r.Quantity, r.IsPurchased, r.ExpirationDate, r.Status, r.Fees, r.CreatedAt)
	return err
}

func (q *pgQueries) UpdateOption(ctx context.Context, r optionRow) (int64, error) {
	tag, err := q.pool.Exec(ctx, `UPDATE options SET
		strategy_id = $2, contract = $3, option_type = $4, strike = $5, premium = $6, quantity = $7,
		is_purchased = $8, expiration_date = $9, status = $10, fees = $11
		WHERE id = $1`,
		r.ID, r.StrategyID, r.Contract, r.OptionType, r.Strike, r.Premium, r.Quantity,
		r.IsPurchased, r.ExpirationDate, r.Status, r.Fees)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *pgQueries) DeleteOption(ctx context.Context, id string) (int64, error) {
	tag, err := q.pool.Exec(ctx, `DELETE FROM options WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTransactionPG(s scanner) (transactionRow, error) {
	var r transactionRow
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.PositionID, &r.OptionID, &r.Date, &r.Contract,
		&r.Type, &r.Quantity, &r.Price, &r.Total, &r.Fees, &r.Status, &r.CreatedAt)
	return r, err
}

func (q *pgQueries) ListTransactions(ctx context.Context, tr transactionRange) ([]transactionRow, error) {
	rows, err := q.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date <= $2)
		ORDER BY date DESC, id`, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTransactionPG)
}

func (q *pgQueries) InsertTransaction(ctx context.Context, r transactionRow) error {
	_, err := q.pool.Exec(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.UserID, r.BrokerageID, r.PositionID, r.OptionID, r.Date, r.Contract, r.Type,
		r.Quantity, r.Price, r.Total, r.Fees, r.Status, r.CreatedAt)
	return err
}

func (q *pgQueries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	tag, err := q.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
