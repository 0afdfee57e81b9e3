package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidDirection = errors.New("direction must be LONG or SHORT")
	ErrMissingContract  = errors.New("contract symbol is required")
	ErrMissingExit      = errors.New("closed position requires exit price and exit date")
)

// MaxQuantity caps contracts per record so quantity times contract size stays
// within int64.
const MaxQuantity = 1_000_000_000

type Position struct {
	ID           string              `json:"id"`
	UserID       string              `json:"userId,omitempty"`
	BrokerageID  string              `json:"brokerageId,omitempty"`
	Contract     string              `json:"contract"`
	Direction    Direction           `json:"direction"`
	Quantity     int64               `json:"quantity"`
	EntryPrice   decimal.Decimal     `json:"entryPrice"`
	CurrentPrice decimal.Decimal     `json:"currentPrice"`
	Status       Status              `json:"status"`
	EntryDate    time.Time           `json:"entryDate"`
	ExitDate     *time.Time          `json:"exitDate,omitempty"`
	ExitPrice    decimal.NullDecimal `json:"exitPrice"`
	RealizedPnL  decimal.NullDecimal `json:"realizedPnl"`
	Fees         decimal.Decimal     `json:"fees"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Validate checks the record invariants. It is called wherever positions enter
// the system, so the engine can assume well-formed input.
func (p Position) Validate() error {
	if p.Contract == "" {
		return ErrMissingContract
	}
	if !p.Direction.Valid() {
		return fmt.Errorf("position %s: %w", p.ID, ErrInvalidDirection)
	}
	if p.Quantity <= 0 || p.Quantity > MaxQuantity {
		return fmt.Errorf("position %s quantity %d: %w", p.ID, p.Quantity, ErrInvalidQuantity)
	}
	if !p.EntryPrice.IsPositive() {
		return fmt.Errorf("position %s entry price %s: %w", p.ID, p.EntryPrice, ErrInvalidPrice)
	}
	if p.CurrentPrice.IsNegative() {
		return fmt.Errorf("position %s current price %s: %w", p.ID, p.CurrentPrice, ErrInvalidPrice)
	}
	if p.Status == StatusClosed && (!p.ExitPrice.Valid || p.ExitDate == nil) {
		return fmt.Errorf("position %s: %w", p.ID, ErrMissingExit)
	}
	return nil
}

// MarkPrice is the latest known price, falling back to the entry price when no
// mark has been recorded.
func (p Position) MarkPrice() decimal.Decimal {
	if p.CurrentPrice.IsPositive() {
		return p.CurrentPrice
	}
	return p.EntryPrice
}

func (p Position) IsActive() bool {
	return p.Status.IsActive()
}
