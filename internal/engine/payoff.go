package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var ErrInvalidRange = errors.New("invalid price range")

// maxCurvePoints bounds the sampling so a tiny step cannot exhaust memory.
const maxCurvePoints = 20000

type PriceRange struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Step decimal.Decimal
}

func (r PriceRange) Validate() error {
	switch {
	case !r.Step.IsPositive():
		return fmt.Errorf("step %s: %w", r.Step, ErrInvalidRange)
	case r.Min.IsNegative():
		return fmt.Errorf("min %s: %w", r.Min, ErrInvalidRange)
	case r.Min.GreaterThan(r.Max):
		return fmt.Errorf("min %s above max %s: %w", r.Min, r.Max, ErrInvalidRange)
	}
	points := r.Max.Sub(r.Min).Div(r.Step).IntPart() + 1
	if points > maxCurvePoints {
		return fmt.Errorf("%d points: %w", points, ErrInvalidRange)
	}
	return nil
}

// OptionPayoff is the result of one contract of an option at expiry, net of
// the premium. A written option mirrors the bought one.
func OptionPayoff(optionType types.OptionType, strike, premium, underlying decimal.Decimal, isPurchased bool, contractSize int64) decimal.Decimal {
	var intrinsic decimal.Decimal
	if optionType == types.OptionCall {
		intrinsic = decimal.Max(underlying.Sub(strike), decimal.Zero)
	} else {
		intrinsic = decimal.Max(strike.Sub(underlying), decimal.Zero)
	}
	size := decimal.NewFromInt(contractSize)
	if isPurchased {
		return intrinsic.Sub(premium).Mul(size)
	}
	return premium.Sub(intrinsic).Mul(size)
}

func LegPayoff(leg types.OptionLeg, underlying decimal.Decimal, contractSize int64) decimal.Decimal {
	return OptionPayoff(leg.Type, leg.Strike, leg.Premium, underlying, leg.IsPurchased, contractSize).
		Mul(decimal.NewFromInt(leg.Quantity))
}

// LegBreakeven is the underlying price at which the leg neither gains nor
// loses. It does not depend on whether the leg was bought or written.
func LegBreakeven(leg types.OptionLeg) decimal.Decimal {
	if leg.Type == types.OptionCall {
		return leg.Strike.Add(leg.Premium)
	}
	return leg.Strike.Sub(leg.Premium)
}

// DefaultPriceRange spans the legs' strikes with a margin of half their
// spread, never less than 50, in steps of 5.
func DefaultPriceRange(legs []types.OptionLeg) PriceRange {
	step := decimal.NewFromInt(5)
	if len(legs) == 0 {
		return PriceRange{Min: decimal.Zero, Max: decimal.Zero, Step: step}
	}
	lo, hi := legs[0].Strike, legs[0].Strike
	for _, l := range legs[1:] {
		lo = decimal.Min(lo, l.Strike)
		hi = decimal.Max(hi, l.Strike)
	}
	margin := decimal.Max(decimal.NewFromInt(50), hi.Sub(lo).Mul(decimal.NewFromFloat(0.5)))
	return PriceRange{
		Min:  decimal.Max(decimal.Zero, lo.Sub(margin)),
		Max:  hi.Add(margin),
		Step: step,
	}
}

// GeneratePayoffCurve samples the combined payoff of legs at every step of r,
// both ends included.
func GeneratePayoffCurve(legs []types.OptionLeg, r PriceRange, reg *Registry) ([]types.PayoffPoint, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	sizes, err := legSizes(legs, reg)
	if err != nil {
		return nil, err
	}
	return sampleCurve(legs, sizes, r), nil
}

func sampleCurve(legs []types.OptionLeg, sizes []int64, r PriceRange) []types.PayoffPoint {
	var curve []types.PayoffPoint
	for price := r.Min; price.LessThanOrEqual(r.Max); price = price.Add(r.Step) {
		total := decimal.Zero
		for i, l := range legs {
			total = total.Add(LegPayoff(l, price, sizes[i]))
		}
		curve = append(curve, types.PayoffPoint{Price: price, Payoff: total})
	}
	return curve
}

// legSizes validates legs and resolves the contract size of each.
func legSizes(legs []types.OptionLeg, reg *Registry) ([]int64, error) {
	sizes := make([]int64, len(legs))
	for i, l := range legs {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		size, err := reg.ContractSize(l.Contract)
		if err != nil {
			return nil, err
		}
		sizes[i] = size
	}
	return sizes, nil
}

// Breakevens returns every price where the sampled curve touches or crosses
// zero, interpolating linearly between neighbouring samples.
func Breakevens(curve []types.PayoffPoint) []decimal.Decimal {
	var out []decimal.Decimal
	for i, pt := range curve {
		if pt.Payoff.IsZero() {
			out = append(out, pt.Price)
			continue
		}
		if i == 0 {
			continue
		}
		prev := curve[i-1]
		if prev.Payoff.IsZero() || prev.Payoff.Sign() == pt.Payoff.Sign() {
			continue
		}
		// prev.Payoff + t*(pt.Payoff-prev.Payoff) = 0
		t := prev.Payoff.Neg().Div(pt.Payoff.Sub(prev.Payoff))
		out = append(out, prev.Price.Add(pt.Price.Sub(prev.Price).Mul(t)))
	}
	return out
}

func AnalyzePayoff(legs []types.OptionLeg, r PriceRange, reg *Registry) (types.PayoffAnalysis, error) {
	if err := r.Validate(); err != nil {
		return types.PayoffAnalysis{}, err
	}
	sizes, err := legSizes(legs, reg)
	if err != nil {
		return types.PayoffAnalysis{}, err
	}
	curve := sampleCurve(legs, sizes, r)

	a := types.PayoffAnalysis{
		Curve:           curve,
		Breakevens:      Breakevens(curve),
		PremiumPaid:     decimal.Zero,
		PremiumReceived: decimal.Zero,
	}
	for i, pt := range curve {
		if i == 0 || pt.Payoff.GreaterThan(a.MaxProfit) {
			a.MaxProfit = pt.Payoff
		}
		if i == 0 || pt.Payoff.LessThan(a.MaxLoss) {
			a.MaxLoss = pt.Payoff
		}
	}
	for i, l := range legs {
		amount := l.Premium.Mul(decimal.NewFromInt(l.Quantity)).Mul(decimal.NewFromInt(sizes[i]))
		if l.IsPurchased {
			a.PremiumPaid = a.PremiumPaid.Add(amount)
		} else {
			a.PremiumReceived = a.PremiumReceived.Add(amount)
		}
	}
	return a, nil
}
