package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

func ParseOptionType(raw string) (OptionType, error) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case OptionCall:
		return OptionCall, nil
	case OptionPut:
		return OptionPut, nil
	}
	return "", fmt.Errorf("option type %q: %w", raw, ErrUnknownOptionType)
}

type OptionLeg struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId,omitempty"`
	BrokerageID    string          `json:"brokerageId,omitempty"`
	StrategyID     string          `json:"strategyId,omitempty"`
	Contract       string          `json:"contract"`
	Type           OptionType      `json:"optionType"`
	Strike         decimal.Decimal `json:"strike"`
	Premium        decimal.Decimal `json:"premium"`
	Quantity       int64           `json:"quantity"`
	IsPurchased    bool            `json:"isPurchased"`
	ExpirationDate time.Time       `json:"expirationDate"`
	Status         OptionStatus    `json:"status"`
	Fees           decimal.Decimal `json:"fees"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (o OptionLeg) Validate() error {
	if o.Contract == "" {
		return ErrMissingContract
	}
	if o.Type != OptionCall && o.Type != OptionPut {
		return fmt.Errorf("option %s type %q: %w", o.ID, o.Type, ErrUnknownOptionType)
	}
	if o.Quantity <= 0 || o.Quantity > MaxQuantity {
		return fmt.Errorf("option %s quantity %d: %w", o.ID, o.Quantity, ErrInvalidQuantity)
	}
	if !o.Strike.IsPositive() {
		return fmt.Errorf("option %s strike %s: %w", o.ID, o.Strike, ErrInvalidPrice)
	}
	if o.Premium.IsNegative() {
		return fmt.Errorf("option %s premium %s: %w", o.ID, o.Premium, ErrInvalidPrice)
	}
	return nil
}

// Label is the display name used for mirrored transactions, e.g. "CALL 400".
func (o OptionLeg) Label() string {
	return fmt.Sprintf("%s %s", o.Type, o.Strike.String())
}

type PayoffPoint struct {
	Price  decimal.Decimal `json:"price"`
	Payoff decimal.Decimal `json:"payoff"`
}

type PayoffAnalysis struct {
	Curve           []PayoffPoint     `json:"curve"`
	Breakevens      []decimal.Decimal `json:"breakevens"`
	MaxProfit       decimal.Decimal   `json:"maxProfit"`
	MaxLoss         decimal.Decimal   `json:"maxLoss"`
	PremiumPaid     decimal.Decimal   `json:"premiumPaid"`
	PremiumReceived decimal.Decimal   `json:"premiumReceived"`
}
