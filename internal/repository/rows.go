package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rows mirror the stored columns. Status, direction and type fields are the raw
// stored strings; they are normalized in Database before leaving the package.

type positionRow struct {
	ID           string
	UserID       string
	BrokerageID  string
	Contract     string
	Direction    string
	Quantity     int64
	EntryPrice   decimal.Decimal
	CurrentPrice decimal.Decimal
	Status       string
	EntryDate    time.Time
	ExitDate     *time.Time
	ExitPrice    decimal.NullDecimal
	RealizedPnL  decimal.NullDecimal
	Fees         decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type optionRow struct {
	ID             string
	UserID         string
	BrokerageID    string
	StrategyID     string
	Contract       string
	OptionType     string
	Strike         decimal.Decimal
	Premium        decimal.Decimal
	Quantity       int64
	IsPurchased    bool
	ExpirationDate time.Time
	Status         string
	Fees           decimal.Decimal
	CreatedAt      time.Time
}

type transactionRow struct {
	ID          string
	UserID      string
	BrokerageID string
	PositionID  string
	OptionID    string
	Date        time.Time
	Contract    string
	Type        string
	Quantity    int64
	Price       decimal.Decimal
	Total       decimal.Decimal
	Fees        decimal.Decimal
	Status      string
	CreatedAt   time.Time
}

type transactionRange struct {
	Start *time.Time
	End   *time.Time
}

// The query interfaces are implemented once per SQL dialect. Update and
// delete return the number of affected rows so that missing ids surface as
// not-found errors.

type positionsRepository interface {
	ListPositions(ctx context.Context) ([]positionRow, error)
	GetPosition(ctx context.Context, id string) (positionRow, error)
	InsertPosition(ctx context.Context, row positionRow) error
	UpdatePosition(ctx context.Context, row positionRow) (int64, error)
	DeletePosition(ctx context.Context, id string) (int64, error)
}

type optionsRepository interface {
	ListOptions(ctx context.Context) ([]optionRow, error)
	GetOption(ctx context.Context, id string) (optionRow, error)
	InsertOption(ctx context.Context, row optionRow) error
	UpdateOption(ctx context.Context, row optionRow) (int64, error)
	DeleteOption(ctx context.Context, id string) (int64, error)
}

type transactionsRepository interface {
	ListTransactions(ctx context.Context, r transactionRange) ([]transactionRow, error)
	InsertTransaction(ctx context.Context, row transactionRow) error
	DeleteTransaction(ctx context.Context, id string) (int64, error)
}

type scanner interface {
	Scan(dest ...any) error
}
