package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed sqlite/schema.sql
var sqliteSchema string

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps an in-memory database alive and serializes
	// writers on a file.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	return conn, nil
}

// sqliteQueries stores times as unix milliseconds and decimals as text.
type sqliteQueries struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func scanPositionSQLite(s scanner) (positionRow, error) {
	var (
		r                       positionRow
		entry, created, updated int64
		exit                    sql.NullInt64
	)
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.Contract, &r.Direction, &r.Quantity,
		&r.EntryPrice, &r.CurrentPrice, &r.Status, &entry, &exit, &r.ExitPrice,
		&r.RealizedPnL, &r.Fees, &created, &updated)
	if err != nil {
		return positionRow{}, err
	}
	r.EntryDate = fromMillis(entry)
	if exit.Valid {
		t := fromMillis(exit.Int64)
		r.ExitDate = &t
	}
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = fromMillis(updated)
	return r, nil
}

func (q *sqliteQueries) ListPositions(ctx context.Context) ([]positionRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY entry_date, id`)
	if err != nil {
		return nil, err
	}
	return collectSQL(rows, scanPositionSQLite)
}

func (q *sqliteQueries) GetPosition(ctx context.Context, id string) (positionRow, error) {
	return scanPositionSQLite(q.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ?`, id))
}

func (q *sqliteQueries) InsertPosition(ctx context.Context, r positionRow) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO positions (`+positionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.BrokerageID, r.Contract, r.Direction, r.Quantity, r.EntryPrice, r.CurrentPrice,
		r.Status, toMillis(r.EntryDate), nullMillis(r.ExitDate), r.ExitPrice, r.RealizedPnL, r.Fees,
		toMillis(r.CreatedAt), toMillis(r.UpdatedAt))
	return err
}

func (q *sqliteQueries) UpdatePosition(ctx context.Context, r positionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE positions SET
		user_id = ?, brokerage_id = ?, contract = ?, direction = ?, quantity = ?, entry_price = ?,
		current_price = ?, status = ?, entry_date = ?, exit_date = ?, exit_price = ?,
		realized_pnl = ?, fees = ?, updated_at = ?
		WHERE id = ?`,
		r.UserID, r.BrokerageID, r.Contract, r.Direction, r.Quantity, r.EntryPrice, r.CurrentPrice,
		r.Status, toMillis(r.EntryDate), nullMillis(r.ExitDate), r.ExitPrice, r.RealizedPnL, r.Fees,
		toMillis(r.UpdatedAt), r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *sqliteQueries) DeletePosition(ctx context.Context, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM positions WHERE id = ?`, id)
}

func scanOptionSQLite(s scanner) (optionRow, error) {
	var (
		r                   optionRow
		expiration, created int64
	)
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.StrategyID, &r.Contract, &r.OptionType,
		&r.Strike, &r.Premium, &r.Quantity, &r.IsPurchased, &expiration, &r.Status, &r.Fees, &created)
	if err != nil {
		return optionRow{}, err
	}
	r.ExpirationDate = fromMillis(expiration)
	r.CreatedAt = fromMillis(created)
	return r, nil
}

func (q *sqliteQueries) ListOptions(ctx context.Context) ([]optionRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+optionColumns+` FROM options ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collectSQL(rows, scanOptionSQLite)
}

func (q *sqliteQueries) GetOption(ctx context.Context, id string) (optionRow, error) {
	return scanOptionSQLite(q.db.QueryRowContext(ctx, `SELECT `+optionColumns+` FROM options WHERE id = ?`, id))
}

func (q *sqliteQueries) InsertOption(ctx context.Context, r optionRow) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO options (`+optionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.BrokerageID, r.StrategyID, r.Contract, r.OptionType, r.Strike, r.Premium,
		r.Quantity, r.IsPurchased, toMillis(r.ExpirationDate), r.Status, r.Fees, toMillis(r.CreatedAt))
	return err
}

func (q *sqliteQueries) UpdateOption(ctx context.Context, r optionRow) (int64, error) {
	return q.exec(ctx, `UPDATE options SET
		strategy_id = ?, contract = ?, option_type = ?, strike = ?, premium = ?, quantity = ?,
		is_purchased = ?, expiration_date = ?, status = ?, fees = ?
		WHERE id = ?`,
		r.StrategyID, r.Contract, r.OptionType, r.Strike, r.Premium, r.Quantity,
		r.IsPurchased, toMillis(r.ExpirationDate), r.Status, r.Fees, r.ID)
}

func (q *sqliteQueries) DeleteOption(ctx context.Context, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM options WHERE id = ?`, id)
}

func scanTransactionSQLite(s scanner) (transactionRow, error) {
	var (
		r             transactionRow
		date, created int64
	)
	err := s.Scan(&r.ID, &r.UserID, &r.BrokerageID, &r.PositionID, &r.OptionID, &date, &r.Contract,
		&r.Type, &r.Quantity, &r.Price, &r.Total, &r.Fees, &r.Status, &created)
	if err != nil {
		return transactionRow{}, err
	}
	r.Date = fromMillis(date)
	r.CreatedAt = fromMillis(created)
	return r, nil
}

func (q *sqliteQueries) ListTransactions(ctx context.Context, tr transactionRange) ([]transactionRow, error) {
	start, end := nullMillis(tr.Start), nullMillis(tr.End)
	rows, err := q.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE (? IS NULL OR date >= ?)
		  AND (? IS NULL OR date <= ?)
		ORDER BY date DESC, id`, start, start, end, end)
	if err != nil {
		return nil, err
	}
	return collectSQL(rows, scanTransactionSQLite)
}

func (q *sqliteQueries) InsertTransaction(ctx context.Context, r transactionRow) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.BrokerageID, r.PositionID, r.OptionID, toMillis(r.Date), r.Contract, r.Type,
		r.Quantity, r.Price, r.Total, r.Fees, r.Status, toMillis(r.CreatedAt))
	return err
}

func (q *sqliteQueries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM transactions WHERE id = ?`, id)
}

func (q *sqliteQueries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectSQL[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
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
