package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

func ParseTransactionType(raw string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "COMPRA":
		return TransactionBuy, nil
	case "SELL", "VENDA":
		return TransactionSell, nil
	}
	return "", fmt.Errorf("transaction type %q: %w", raw, ErrUnknownDirection)
}

// TransactionTypeFor is the side of the trade that opens a position in d.
func TransactionTypeFor(d Direction) TransactionType {
	if d == DirectionShort {
		return TransactionSell
	}
	return TransactionBuy
}

// Transaction is the audit record mirrored for every position or option
// mutation.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId,omitempty"`
	BrokerageID string          `json:"brokerageId,omitempty"`
	PositionID  string          `json:"positionId,omitempty"`
	OptionID    string          `json:"optionId,omitempty"`
	Date        time.Time       `json:"date"`
	Contract    string          `json:"contract"`
	Type        TransactionType `json:"type"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	Fees        decimal.Decimal `json:"fees"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type TransactionFilter struct {
	Start *time.Time
	End   *time.Time
}

// Match reports whether t falls inside the filter window (both ends inclusive).
func (f TransactionFilter) Match(t Transaction) bool {
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}
