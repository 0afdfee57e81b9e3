package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrPositionNotFound    = errors.New("position not found in datasource")
	ErrOptionNotFound      = errors.New("option not found in datasource")
	ErrTransactionNotFound = errors.New("transaction not found in datasource")
	ErrCorruptRecord       = errors.New("stored record failed normalization")
)

// Database holds the dialect-specific queries and the connection that backs
// them. All records returned from it are normalized and validated.
type Database struct {
	positions    positionsRepository
	options      optionsRepository
	transactions transactionsRepository
	close        func() error
}

// NewDatabase connects to PostgreSQL and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	queries := &pgQueries{pool: pool}
	return &Database{
		positions:    queries,
		options:      queries,
		transactions: queries,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

// NewSQLiteDatabase opens (or creates) a SQLite file and bootstraps the
// schema. Use ":memory:" for a throwaway store.
func NewSQLiteDatabase(ctx context.Context, path string) (*Database, error) {
	conn, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	queries := &sqliteQueries{db: conn}
	return &Database{
		positions:    queries,
		options:      queries,
		transactions: queries,
		close:        conn.Close,
	}, nil
}

func (db *Database) Close() error {
	if db.close == nil {
		return nil
	}
	return db.close()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
