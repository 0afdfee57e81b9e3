package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

// Marks holds the latest known price per contract symbol. Keys are matched
// case-insensitively.
type Marks map[string]decimal.Decimal

func (m Marks) lookup(contract string) (decimal.Decimal, bool) {
	if m == nil {
		return decimal.Zero, false
	}
	if p, ok := m[contract]; ok && p.IsPositive() {
		return p, true
	}
	for k, p := range m {
		if strings.EqualFold(k, contract) && p.IsPositive() {
			return p, true
		}
	}
	return decimal.Zero, false
}

// AggregateNetPositions collapses the active positions into one record per
// contract, marked at the positions' own latest prices.
func AggregateNetPositions(positions []types.Position, reg *Registry) ([]types.NetPosition, error) {
	return AggregateNetPositionsAt(positions, reg, nil)
}

// AggregateNetPositionsAt is AggregateNetPositions with explicit per-contract
// marks. Contracts that net to zero are left out. Any unresolvable symbol
// fails the whole call.
func AggregateNetPositionsAt(positions []types.Position, reg *Registry, marks Marks) ([]types.NetPosition, error) {
	groups, err := groupActive(positions)
	if err != nil {
		return nil, err
	}

	contracts := make([]string, 0, len(groups))
	for c := range groups {
		contracts = append(contracts, c)
	}
	sort.Strings(contracts)

	nets := make([]types.NetPosition, 0, len(contracts))
	for _, c := range contracts {
		net, err := netGroup(c, groups[c], reg, marks)
		if err != nil {
			return nil, err
		}
		if net.NetQuantity == 0 {
			continue
		}
		nets = append(nets, net)
	}
	return nets, nil
}

// NetPositionFor nets a single contract. Unlike the aggregate it returns the
// record even when it is neutral.
func NetPositionFor(contract string, positions []types.Position, reg *Registry, marks Marks) (types.NetPosition, error) {
	groups, err := groupActive(positions)
	if err != nil {
		return types.NetPosition{}, err
	}
	key := strings.ToUpper(strings.TrimSpace(contract))
	return netGroup(key, groups[key], reg, marks)
}

// IsPositionNeutralized reports whether p no longer carries risk of its own:
// its contract nets to zero, or p sits on the opposite side of the net.
func IsPositionNeutralized(p types.Position, positions []types.Position, reg *Registry) (bool, error) {
	if !p.IsActive() {
		return true, nil
	}
	net, err := NetPositionFor(p.Contract, positions, reg, nil)
	if err != nil {
		return false, err
	}
	switch net.NetDirection {
	case types.NetNeutral:
		return true, nil
	case types.NetLong:
		return p.Direction == types.DirectionShort, nil
	default:
		return p.Direction == types.DirectionLong, nil
	}
}

func SummarizeNetPositions(nets []types.NetPosition) types.NetSummary {
	s := types.NetSummary{
		TotalUnrealizedPnL: decimal.Zero,
		TotalExposure:      decimal.Zero,
		TotalNetPositions:  len(nets),
	}
	for _, n := range nets {
		s.TotalUnrealizedPnL = s.TotalUnrealizedPnL.Add(n.UnrealizedPnL)
		s.TotalExposure = s.TotalExposure.Add(n.Exposure)
		switch n.NetDirection {
		case types.NetLong:
			s.LongCount++
		case types.NetShort:
			s.ShortCount++
		}
	}
	s.MarginRequired = MarginRequired(s.TotalExposure)
	return s
}

func groupActive(positions []types.Position) (map[string][]types.Position, error) {
	groups := make(map[string][]types.Position)
	for _, p := range positions {
		if !p.IsActive() {
			continue
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(strings.TrimSpace(p.Contract))
		groups[key] = append(groups[key], p)
	}
	return groups, nil
}

func netGroup(contract string, group []types.Position, reg *Registry, marks Marks) (types.NetPosition, error) {
	product, err := reg.Resolve(contract)
	if err != nil {
		return types.NetPosition{}, err
	}

	net := types.NetPosition{
		Contract:     contract,
		Product:      product.Name,
		ProductCode:  product.Code,
		ContractSize: product.ContractSize,
		NetDirection: types.NetNeutral,
		TotalValue:   decimal.Zero,
		Positions:    make([]string, 0, len(group)),
	}

	var totalQty int64
	for _, p := range group {
		switch p.Direction {
		case types.DirectionLong:
			net.LongQuantity += p.Quantity
		case types.DirectionShort:
			net.ShortQuantity += p.Quantity
		}
		totalQty += p.Quantity
		net.TotalValue = net.TotalValue.Add(p.EntryPrice.Mul(decimal.NewFromInt(p.Quantity)))
		net.Positions = append(net.Positions, p.ID)
	}
	sort.Strings(net.Positions)

	net.WeightedEntryPrice = decimal.Zero
	if totalQty > 0 {
		net.WeightedEntryPrice = net.TotalValue.Div(decimal.NewFromInt(totalQty))
	}
	net.CurrentPrice = currentPrice(contract, group, marks, net.WeightedEntryPrice)

	net.NetQuantity = net.LongQuantity - net.ShortQuantity
	switch {
	case net.NetQuantity > 0:
		net.NetDirection = types.NetLong
	case net.NetQuantity < 0:
		net.NetDirection = types.NetShort
	}

	dir := types.DirectionLong
	if net.NetDirection == types.NetShort {
		dir = types.DirectionShort
	}
	pnl := CalculatePositionPnL(dir, net.AbsQuantity(), net.WeightedEntryPrice, net.CurrentPrice, product.ContractSize)
	net.UnrealizedPnL = pnl.PnL
	net.Exposure = pnl.Exposure

	return net, nil
}

// currentPrice picks the explicit mark when there is one, else the price of
// the most recently entered position that has a mark of its own. The netting
// rule only asks for the first available current_price; taking the latest
// EntryDate (ties broken by ID) keeps the result independent of input order.
func currentPrice(contract string, group []types.Position, marks Marks, fallback decimal.Decimal) decimal.Decimal {
	if p, ok := marks.lookup(contract); ok {
		return p
	}
	var latest *types.Position
	for i := range group {
		p := &group[i]
		if !p.CurrentPrice.IsPositive() {
			continue
		}
		if latest == nil || p.EntryDate.After(latest.EntryDate) ||
			(p.EntryDate.Equal(latest.EntryDate) && p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return fallback
	}
	return latest.CurrentPrice
}
