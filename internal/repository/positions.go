package repository

import (
	"context"
	"fmt"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

// ListPositions returns every stored position in entry order.
func (db *Database) ListPositions(ctx context.Context) ([]types.Position, error) {
	rows, err := db.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	out := make([]types.Position, 0, len(rows))
	for _, r := range rows {
		p, err := positionFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (db *Database) GetPosition(ctx context.Context, id string) (types.Position, error) {
	row, err := db.positions.GetPosition(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return types.Position{}, fmt.Errorf("position %s %w", id, ErrPositionNotFound)
		}
		return types.Position{}, err
	}
	return positionFromRow(row)
}

func (db *Database) CreatePosition(ctx context.Context, p types.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := db.positions.InsertPosition(ctx, positionToRow(p)); err != nil {
		return fmt.Errorf("insert position %s: %w", p.ID, err)
	}
	return nil
}

func (db *Database) UpdatePosition(ctx context.Context, p types.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	n, err := db.positions.UpdatePosition(ctx, positionToRow(p))
	if err != nil {
		return fmt.Errorf("update position %s: %w", p.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("position %s %w", p.ID, ErrPositionNotFound)
	}
	return nil
}

func (db *Database) DeletePosition(ctx context.Context, id string) error {
	n, err := db.positions.DeletePosition(ctx, id)
	if err != nil {
		return fmt.Errorf("delete position %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("position %s %w", id, ErrPositionNotFound)
	}
	return nil
}

// positionFromRow is the ingestion boundary: every stored vocabulary is mapped
// onto the canonical enums and the result must validate.
func positionFromRow(r positionRow) (types.Position, error) {
	status, err := types.ParseStatus(r.Status)
	if err != nil {
		return types.Position{}, fmt.Errorf("position %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	direction, err := types.ParseDirection(r.Direction)
	if err != nil {
		return types.Position{}, fmt.Errorf("position %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	p := types.Position{
		ID:           r.ID,
		UserID:       r.UserID,
		BrokerageID:  r.BrokerageID,
		Contract:     r.Contract,
		Direction:    direction,
		Quantity:     r.Quantity,
		EntryPrice:   r.EntryPrice,
		CurrentPrice: r.CurrentPrice,
		Status:       status,
		EntryDate:    r.EntryDate,
		ExitDate:     r.ExitDate,
		ExitPrice:    r.ExitPrice,
		RealizedPnL:  r.RealizedPnL,
		Fees:         r.Fees,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := p.Validate(); err != nil {
		return types.Position{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return p, nil
}

func positionToRow(p types.Position) positionRow {
	return positionRow{
		ID:           p.ID,
		UserID:       p.UserID,
		BrokerageID:  p.BrokerageID,
		Contract:     p.Contract,
		Direction:    string(p.Direction),
		Quantity:     p.Quantity,
		EntryPrice:   p.EntryPrice,
		CurrentPrice: p.CurrentPrice,
		Status:       string(p.Status),
		EntryDate:    p.EntryDate,
		ExitDate:     p.ExitDate,
		ExitPrice:    p.ExitPrice,
		RealizedPnL:  p.RealizedPnL,
		Fees:         p.Fees,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
