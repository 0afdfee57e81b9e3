package engine

import (
	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var hundred = decimal.NewFromInt(100)

// CalculatePositionPnL marks a position of quantity contracts of contractSize
// units each. A LONG gains when current rises above entry, a SHORT when it
// falls below.
func CalculatePositionPnL(direction types.Direction, quantity int64, entry, current decimal.Decimal, contractSize int64) types.PnL {
	qty := decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(contractSize))

	diff := current.Sub(entry)
	pnl := diff.Mul(qty)
	if direction == types.DirectionShort {
		pnl = pnl.Neg()
	}

	exposure := entry.Mul(qty)
	pct := decimal.Zero
	if !exposure.IsZero() {
		pct = pnl.Div(exposure).Mul(hundred)
	}

	return types.PnL{
		PnL:           pnl,
		PnLPercentage: pct,
		TotalQuantity: qty.IntPart(),
		Exposure:      exposure,
		PriceDiff:     diff,
	}
}

// CalculateTargetPrice returns the price at which the position reaches
// targetPnL. With no quantity any price gives zero, so entry is returned.
func CalculateTargetPrice(direction types.Direction, entry decimal.Decimal, quantity, contractSize int64, targetPnL decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(contractSize))
	if qty.IsZero() {
		return entry
	}
	move := targetPnL.Div(qty)
	if direction == types.DirectionShort {
		return entry.Sub(move)
	}
	return entry.Add(move)
}

// RealizedPnL is the P&L locked in by closing at exit.
func RealizedPnL(direction types.Direction, quantity int64, entry, exit decimal.Decimal, contractSize int64) decimal.Decimal {
	return CalculatePositionPnL(direction, quantity, entry, exit, contractSize).PnL
}

// PositionPnL validates p and marks it at its last known price.
func PositionPnL(p types.Position, reg *Registry) (types.PnL, error) {
	if err := p.Validate(); err != nil {
		return types.PnL{}, err
	}
	size, err := reg.ContractSize(p.Contract)
	if err != nil {
		return types.PnL{}, err
	}
	return CalculatePositionPnL(p.Direction, p.Quantity, p.EntryPrice, p.MarkPrice(), size), nil
}
