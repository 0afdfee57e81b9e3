package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var (
	ErrNothingToClose       = errors.New("contract has no open net position to close")
	ErrPositionNotActive    = errors.New("position is not open")
	ErrInvalidCloseQuantity = errors.New("close quantity must be between 1 and the open quantity")
	ErrInvalidClosePrice    = errors.New("close price must be positive")
	ErrEmptyStrategy        = errors.New("strategy needs at least one leg")
)

// Service turns mutation intents into store writes and derives every
// aggregate from a fresh snapshot. It keeps no position state of its own.
type Service struct {
	store    Store
	registry *engine.Registry
	metrics  *metrics.Metrics
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(store Store, registry *engine.Registry, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *Service) Registry() *engine.Registry {
	return s.registry
}

// NetPositions nets the stored active positions per contract. marks may be nil.
func (s *Service) NetPositions(ctx context.Context, marks engine.Marks) ([]types.NetPosition, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	nets, err := engine.AggregateNetPositionsAt(positions, s.registry, marks)
	if err != nil {
		return nil, err
	}
	s.publish(nets)
	return nets, nil
}

func (s *Service) NetSummary(ctx context.Context, marks engine.Marks) (types.NetSummary, error) {
	nets, err := s.NetPositions(ctx, marks)
	if err != nil {
		return types.NetSummary{}, err
	}
	return engine.SummarizeNetPositions(nets), nil
}

// RefreshExposure recomputes the net positions so the exposure gauges follow
// the store even when nobody is reading them.
func (s *Service) RefreshExposure(ctx context.Context) error {
	nets, err := s.NetPositions(ctx, nil)
	if err != nil {
		return err
	}
	summary := engine.SummarizeNetPositions(nets)
	s.log.Debug().
		Int("contracts", summary.TotalNetPositions).
		Str("exposure", summary.TotalExposure.StringFixed(2)).
		Str("unrealized_pnl", summary.TotalUnrealizedPnL.StringFixed(2)).
		Msg("exposure refreshed")
	return nil
}

func (s *Service) Performance(ctx context.Context, initialCapital, riskFreeRate decimal.Decimal) (*engine.Report, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	return engine.GenerateReport(positions, s.registry, initialCapital, riskFreeRate)
}

func (s *Service) publish(nets []types.NetPosition) {
	if s.metrics == nil {
		return
	}
	s.metrics.NetQuantity.Reset()
	s.metrics.NetExposure.Reset()
	s.metrics.UnrealizedPnL.Reset()
	for _, n := range nets {
		s.metrics.NetQuantity.WithLabelValues(n.Contract).Set(float64(n.NetQuantity))
		s.metrics.NetExposure.WithLabelValues(n.Contract).Set(n.Exposure.InexactFloat64())
		s.metrics.UnrealizedPnL.WithLabelValues(n.Contract).Set(n.UnrealizedPnL.InexactFloat64())
	}
}
