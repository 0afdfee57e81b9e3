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

type NewOption struct {
	UserID         string
	BrokerageID    string
	Contract       string
	Type           types.OptionType
	Strike         decimal.Decimal
	Premium        decimal.Decimal
	Quantity       int64
	IsPurchased    bool
	ExpirationDate time.Time
}

type OptionUpdate struct {
	Strike         *decimal.Decimal
	Premium        *decimal.Decimal
	Quantity       *int64
	ExpirationDate *time.Time
	Status         *types.OptionStatus
}

// Options lists the stored legs created inside period. A nil status keeps
// every state.
func (s *Service) Options(ctx context.Context, period engine.Period, status *types.OptionStatus) ([]types.OptionLeg, error) {
	legs, err := s.store.ListOptions(ctx)
	if err != nil {
		return nil, err
	}
	legs = engine.FilterOptionsByPeriod(legs, period, s.now())
	if status == nil {
		return legs, nil
	}
	out := legs[:0]
	for _, l := range legs {
		if l.Status == *status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) GetOption(ctx context.Context, id string) (types.OptionLeg, error) {
	return s.store.GetOption(ctx, id)
}

// AddOption stores a single leg with its brokerage fee and mirrors it as a
// BUY (purchased) or SELL (written) transaction.
func (s *Service) AddOption(ctx context.Context, no NewOption) (types.OptionLeg, error) {
	leg, err := s.newLeg(no, "")
	if err != nil {
		return types.OptionLeg{}, err
	}
	if err := s.storeLeg(ctx, leg); err != nil {
		return types.OptionLeg{}, err
	}
	return leg, nil
}

// AddStrategy stores several legs under one strategy id. Every leg is
// validated before anything is written.
func (s *Service) AddStrategy(ctx context.Context, legs []NewOption) (string, []types.OptionLeg, error) {
	if len(legs) == 0 {
		return "", nil, ErrEmptyStrategy
	}
	strategyID := s.newID()
	built := make([]types.OptionLeg, 0, len(legs))
	for i, no := range legs {
		leg, err := s.newLeg(no, strategyID)
		if err != nil {
			return "", nil, fmt.Errorf("leg %d: %w", i, err)
		}
		built = append(built, leg)
	}
	for _, leg := range built {
		if err := s.storeLeg(ctx, leg); err != nil {
			return "", nil, err
		}
	}
	s.log.Info().Str("strategy", strategyID).Int("legs", len(built)).Msg("option strategy added")
	return strategyID, built, nil
}

func (s *Service) newLeg(no NewOption, strategyID string) (types.OptionLeg, error) {
	contract := strings.ToUpper(strings.TrimSpace(no.Contract))
	if _, err := s.registry.Resolve(contract); err != nil {
		return types.OptionLeg{}, err
	}
	leg := types.OptionLeg{
		ID:             s.newID(),
		UserID:         no.UserID,
		BrokerageID:    no.BrokerageID,
		StrategyID:     strategyID,
		Contract:       contract,
		Type:           no.Type,
		Strike:         no.Strike,
		Premium:        no.Premium,
		Quantity:       no.Quantity,
		IsPurchased:    no.IsPurchased,
		ExpirationDate: no.ExpirationDate,
		Status:         types.OptionOpen,
		Fees:           engine.OptionFee(no.Premium, no.Quantity),
		CreatedAt:      s.now(),
	}
	if err := leg.Validate(); err != nil {
		return types.OptionLeg{}, err
	}
	return leg, nil
}

func (s *Service) storeLeg(ctx context.Context, leg types.OptionLeg) error {
	if err := s.store.CreateOption(ctx, leg); err != nil {
		return err
	}
	side := types.TransactionSell
	if leg.IsPurchased {
		side = types.TransactionBuy
	}
	now := s.now()
	tx := types.Transaction{
		ID:          s.newID(),
		UserID:      leg.UserID,
		BrokerageID: leg.BrokerageID,
		OptionID:    leg.ID,
		Date:        now,
		Contract:    leg.Label(),
		Type:        side,
		Quantity:    leg.Quantity,
		Price:       leg.Premium,
		Total:       leg.Premium.Mul(decimal.NewFromInt(leg.Quantity)),
		Fees:        leg.Fees,
		Status:      types.StatusOpen,
		CreatedAt:   now,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("mirror transaction for option %s: %w", leg.ID, err)
	}
	s.log.Info().Str("option", leg.ID).Str("leg", leg.Label()).Str("contract", leg.Contract).
		Bool("purchased", leg.IsPurchased).Int64("quantity", leg.Quantity).Msg("option added")
	return nil
}

func (s *Service) UpdateOption(ctx context.Context, id string, u OptionUpdate) (types.OptionLeg, error) {
	leg, err := s.store.GetOption(ctx, id)
	if err != nil {
		return types.OptionLeg{}, err
	}
	if u.Strike != nil {
		leg.Strike = *u.Strike
	}
	if u.Premium != nil {
		leg.Premium = *u.Premium
	}
	if u.Quantity != nil {
		leg.Quantity = *u.Quantity
	}
	if u.ExpirationDate != nil {
		leg.ExpirationDate = *u.ExpirationDate
	}
	if u.Status != nil {
		leg.Status = *u.Status
	}
	if u.Premium != nil || u.Quantity != nil {
		leg.Fees = engine.OptionFee(leg.Premium, leg.Quantity)
	}
	if err := leg.Validate(); err != nil {
		return types.OptionLeg{}, err
	}
	if err := s.store.UpdateOption(ctx, leg); err != nil {
		return types.OptionLeg{}, err
	}
	return leg, nil
}

func (s *Service) DeleteOption(ctx context.Context, id string) error {
	if err := s.store.DeleteOption(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("option", id).Msg("option deleted")
	return nil
}

// Payoff analyses the combined payoff of the open legs. A nil range spans
// their strikes. With no open legs the analysis is empty.
func (s *Service) Payoff(ctx context.Context, r *engine.PriceRange) (types.PayoffAnalysis, error) {
	legs, err := s.store.ListOptions(ctx)
	if err != nil {
		return types.PayoffAnalysis{}, err
	}
	open := make([]types.OptionLeg, 0, len(legs))
	for _, l := range legs {
		if l.Status == types.OptionOpen {
			open = append(open, l)
		}
	}
	if len(open) == 0 {
		return types.PayoffAnalysis{
			Curve:           []types.PayoffPoint{},
			Breakevens:      []decimal.Decimal{},
			PremiumPaid:     decimal.Zero,
			PremiumReceived: decimal.Zero,
		}, nil
	}
	pr := engine.DefaultPriceRange(open)
	if r != nil {
		pr = *r
	}
	return engine.AnalyzePayoff(open, pr, s.registry)
}
