package portfolio

import (
	"context"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func (s *Service) Transactions(ctx context.Context, f types.TransactionFilter) ([]types.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// DeleteTransaction removes a transaction and then any position left without
// a referencing transaction.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("transaction", id).Msg("transaction deleted")
	_, err := s.CleanOrphanedPositions(ctx)
	return err
}

// CleanOrphanedPositions deletes positions no transaction points at and
// returns how many were removed.
func (s *Service) CleanOrphanedPositions(ctx context.Context) (int, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return 0, err
	}
	txs, err := s.store.ListTransactions(ctx, types.TransactionFilter{})
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.PositionID != "" {
			referenced[tx.PositionID] = true
		}
	}

	removed := 0
	for _, p := range positions {
		if referenced[p.ID] {
			continue
		}
		if err := s.store.DeletePosition(ctx, p.ID); err != nil {
			return removed, err
		}
		removed++
		s.log.Warn().Str("position", p.ID).Str("contract", p.Contract).Msg("orphaned position removed")
	}
	if s.metrics != nil && removed > 0 {
		s.metrics.OrphansRemoved.Add(float64(removed))
	}
	return removed, nil
}
