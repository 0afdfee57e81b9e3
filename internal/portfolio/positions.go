package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

type NewPosition struct {
	UserID       string
	BrokerageID  string
	Contract     string
	Direction    types.Direction
	Quantity     int64
	EntryPrice   decimal.Decimal
	CurrentPrice decimal.Decimal
	EntryDate    time.Time
	Fees         decimal.Decimal
}

// PositionUpdate carries the fields to change; nil fields are kept.
type PositionUpdate struct {
	Direction    *types.Direction
	Quantity     *int64
	EntryPrice   *decimal.Decimal
	CurrentPrice *decimal.Decimal
	EntryDate    *time.Time
	Fees         *decimal.Decimal
}

func (s *Service) Positions(ctx context.Context, period engine.Period) ([]types.Position, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	return engine.FilterPositionsByPeriod(positions, period, s.now()), nil
}

func (s *Service) GetPosition(ctx context.Context, id string) (types.Position, error) {
	return s.store.GetPosition(ctx, id)
}

// OpenPosition stores a new OPEN position and the BUY or SELL transaction
// that mirrors it.
func (s *Service) OpenPosition(ctx context.Context, np NewPosition) (types.Position, error) {
	contract := strings.ToUpper(strings.TrimSpace(np.Contract))
	if _, err := s.registry.Resolve(contract); err != nil {
		return types.Position{}, err
	}

	now := s.now()
	entryDate := np.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}
	p := types.Position{
		ID:           s.newID(),
		UserID:       np.UserID,
		BrokerageID:  np.BrokerageID,
		Contract:     contract,
		Direction:    np.Direction,
		Quantity:     np.Quantity,
		EntryPrice:   np.EntryPrice,
		CurrentPrice: np.CurrentPrice,
		Status:       types.StatusOpen,
		EntryDate:    entryDate,
		Fees:         np.Fees,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return types.Position{}, err
	}

	if err := s.store.CreatePosition(ctx, p); err != nil {
		return types.Position{}, err
	}
	total := p.EntryPrice.Mul(decimal.NewFromInt(p.Quantity))
	tx := s.mirror(p, types.TransactionTypeFor(p.Direction), p.Quantity, p.EntryPrice, total, p.Fees, types.StatusOpen)
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return types.Position{}, fmt.Errorf("mirror transaction for position %s: %w", p.ID, err)
	}

	s.log.Info().Str("position", p.ID).Str("contract", p.Contract).Str("direction", string(p.Direction)).
		Int64("quantity", p.Quantity).Str("entry_price", p.EntryPrice.String()).Msg("position opened")
	return p, nil
}

// UpdatePosition applies u to an open position. Closed and cancelled
// positions are immutable.
func (s *Service) UpdatePosition(ctx context.Context, id string, u PositionUpdate) (types.Position, error) {
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return types.Position{}, err
	}
	if !p.IsActive() {
		return types.Position{}, fmt.Errorf("position %s is %s: %w", id, p.Status, ErrPositionNotActive)
	}

	if u.Direction != nil {
		p.Direction = *u.Direction
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.EntryPrice != nil {
		p.EntryPrice = *u.EntryPrice
	}
	if u.CurrentPrice != nil {
		p.CurrentPrice = *u.CurrentPrice
	}
	if u.EntryDate != nil {
		p.EntryDate = *u.EntryDate
	}
	if u.Fees != nil {
		p.Fees = *u.Fees
	}
	p.UpdatedAt = s.now()

	if err := p.Validate(); err != nil {
		return types.Position{}, err
	}
	if err := s.store.UpdatePosition(ctx, p); err != nil {
		return types.Position{}, err
	}
	return p, nil
}

// ClosePosition closes quantity contracts of an open position at price; zero
// closes all of it. A partial close splits off a new CLOSED record and leaves
// the rest open under the original id. The closed record is returned.
func (s *Service) ClosePosition(ctx context.Context, id string, price decimal.Decimal, quantity int64) (types.Position, error) {
	if !price.IsPositive() {
		return types.Position{}, ErrInvalidClosePrice
	}
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return types.Position{}, err
	}
	return s.closePosition(ctx, p, price, quantity)
}

func (s *Service) closePosition(ctx context.Context, p types.Position, price decimal.Decimal, quantity int64) (types.Position, error) {
	if !p.IsActive() {
		return types.Position{}, fmt.Errorf("position %s is %s: %w", p.ID, p.Status, ErrPositionNotActive)
	}
	if quantity == 0 {
		quantity = p.Quantity
	}
	if quantity < 0 || quantity > p.Quantity {
		return types.Position{}, fmt.Errorf("close %d of %d: %w", quantity, p.Quantity, ErrInvalidCloseQuantity)
	}
	size, err := s.registry.ContractSize(p.Contract)
	if err != nil {
		return types.Position{}, err
	}

	now := s.now()
	total := price.Mul(decimal.NewFromInt(quantity))
	fee := engine.TradeFee(total)

	closed := p
	closed.Quantity = quantity
	closed.Status = types.StatusClosed
	closed.ExitDate = &now
	closed.ExitPrice = decimal.NewNullDecimal(price)
	closed.RealizedPnL = decimal.NewNullDecimal(engine.RealizedPnL(p.Direction, quantity, p.EntryPrice, price, size))
	closed.CurrentPrice = price
	closed.UpdatedAt = now

	if quantity == p.Quantity {
		closed.Fees = p.Fees.Add(fee)
		if err := s.store.UpdatePosition(ctx, closed); err != nil {
			return types.Position{}, err
		}
	} else {
		closed.ID = s.newID()
		closed.Fees = fee
		closed.CreatedAt = now
		if err := s.store.CreatePosition(ctx, closed); err != nil {
			return types.Position{}, err
		}
		remaining := p
		remaining.Quantity = p.Quantity - quantity
		remaining.UpdatedAt = now
		if err := s.store.UpdatePosition(ctx, remaining); err != nil {
			return types.Position{}, err
		}
	}

	tx := s.mirror(closed, types.TransactionTypeFor(p.Direction.Opposite()), quantity, price, total, fee, types.StatusClosed)
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return types.Position{}, fmt.Errorf("closing transaction for position %s: %w", closed.ID, err)
	}

	s.log.Info().Str("position", closed.ID).Str("contract", p.Contract).Int64("quantity", quantity).
		Str("exit_price", price.String()).Str("realized_pnl", closed.RealizedPnL.Decimal.String()).
		Msg("position closed")
	return closed, nil
}

// CloseContract closes every open constituent of a contract's net position at
// price. A contract that nets to zero has nothing to close.
func (s *Service) CloseContract(ctx context.Context, contract string, price decimal.Decimal) ([]types.Position, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidClosePrice
	}
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	net, err := engine.NetPositionFor(contract, positions, s.registry, nil)
	if err != nil {
		return nil, err
	}
	if net.NetDirection == types.NetNeutral {
		return nil, fmt.Errorf("contract %s: %w", net.Contract, ErrNothingToClose)
	}

	members := make(map[string]bool, len(net.Positions))
	for _, id := range net.Positions {
		members[id] = true
	}
	var closed []types.Position
	for _, p := range positions {
		if !members[p.ID] {
			continue
		}
		c, err := s.closePosition(ctx, p, price, 0)
		if err != nil {
			return closed, err
		}
		closed = append(closed, c)
	}
	return closed, nil
}

// DuplicatePosition opens a new position with the same contract, side, size
// and prices as id, entered now.
func (s *Service) DuplicatePosition(ctx context.Context, id string) (types.Position, error) {
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return types.Position{}, err
	}
	return s.OpenPosition(ctx, NewPosition{
		UserID:       p.UserID,
		BrokerageID:  p.BrokerageID,
		Contract:     p.Contract,
		Direction:    p.Direction,
		Quantity:     p.Quantity,
		EntryPrice:   p.EntryPrice,
		CurrentPrice: p.CurrentPrice,
		Fees:         p.Fees,
	})
}

func (s *Service) DeletePosition(ctx context.Context, id string) error {
	if err := s.store.DeletePosition(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("position", id).Msg("position deleted")
	return nil
}

// IsPositionNeutralized reports whether the position is closed, or is offset
// by the rest of its contract.
func (s *Service) IsPositionNeutralized(ctx context.Context, id string) (bool, error) {
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return false, err
	}
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return false, err
	}
	return engine.IsPositionNeutralized(p, positions, s.registry)
}

func (s *Service) mirror(p types.Position, t types.TransactionType, qty int64, price, total, fees decimal.Decimal, status types.Status) types.Transaction {
	now := s.now()
	return types.Transaction{
		ID:          s.newID(),
		UserID:      p.UserID,
		BrokerageID: p.BrokerageID,
		PositionID:  p.ID,
		Date:        now,
		Contract:    p.Contract,
		Type:        t,
		Quantity:    qty,
		Price:       price,
		Total:       total,
		Fees:        fees,
		Status:      status,
		CreatedAt:   now,
	}
}
