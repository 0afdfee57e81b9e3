package types

import (
	"github.com/shopspring/decimal"
)

type PnL struct {
	PnL           decimal.Decimal `json:"pnl"`
	PnLPercentage decimal.Decimal `json:"pnlPercentage"`
	TotalQuantity int64           `json:"totalQuantity"`
	Exposure      decimal.Decimal `json:"exposure"`
	PriceDiff     decimal.Decimal `json:"priceDiff"`
}
