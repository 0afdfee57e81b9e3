package types

import (
	"github.com/shopspring/decimal"
)

// NetPosition is the per-contract aggregate over all active positions sharing
// one symbol. It is derived on every read and never stored.
type NetPosition struct {
	Contract           string          `json:"contract"`
	Product            string          `json:"product"`
	ProductCode        string          `json:"productCode"`
	ContractSize       int64           `json:"contractSize"`
	LongQuantity       int64           `json:"longQuantity"`
	ShortQuantity      int64           `json:"shortQuantity"`
	NetQuantity        int64           `json:"netQuantity"`
	NetDirection       NetDirection    `json:"netDirection"`
	WeightedEntryPrice decimal.Decimal `json:"weightedEntryPrice"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	UnrealizedPnL      decimal.Decimal `json:"unrealizedPnl"`
	Exposure           decimal.Decimal `json:"exposure"`
	Positions          []string        `json:"positions"`
}

// AbsQuantity is the magnitude of the net figure.
func (n NetPosition) AbsQuantity() int64 {
	if n.NetQuantity < 0 {
		return -n.NetQuantity
	}
	return n.NetQuantity
}

type NetSummary struct {
	TotalUnrealizedPnL decimal.Decimal `json:"totalUnrealizedPnl"`
	TotalExposure      decimal.Decimal `json:"totalExposure"`
	MarginRequired     decimal.Decimal `json:"marginRequired"`
	LongCount          int             `json:"longPositions"`
	ShortCount         int             `json:"shortPositions"`
	TotalNetPositions  int             `json:"totalNetPositions"`
}
