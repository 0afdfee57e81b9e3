package engine

import (
	"github.com/shopspring/decimal"
)

var (
	marginRate    = decimal.RequireFromString("0.10")
	tradeFeeRate  = decimal.RequireFromString("0.001")
	optionFeeRate = decimal.RequireFromString("0.05")
)

// MarginRequired is the flat margin estimate on an exposure.
func MarginRequired(exposure decimal.Decimal) decimal.Decimal {
	return exposure.Abs().Mul(marginRate)
}

// TradeFee is the brokerage fee charged on the notional of a futures trade.
func TradeFee(total decimal.Decimal) decimal.Decimal {
	return total.Abs().Mul(tradeFeeRate)
}

// OptionFee is charged on the premium of each added leg, rounded to the unit.
func OptionFee(premium decimal.Decimal, quantity int64) decimal.Decimal {
	return premium.Abs().Mul(decimal.NewFromInt(quantity)).Mul(optionFeeRate).Round(0)
}
