package repository

import (
	"context"
	"fmt"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func (db *Database) ListOptions(ctx context.Context) ([]types.OptionLeg, error) {
	rows, err := db.options.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	out := make([]types.OptionLeg, 0, len(rows))
	for _, r := range rows {
		o, err := optionFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (db *Database) GetOption(ctx context.Context, id string) (types.OptionLeg, error) {
	row, err := db.options.GetOption(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return types.OptionLeg{}, fmt.Errorf("option %s %w", id, ErrOptionNotFound)
		}
		return types.OptionLeg{}, err
	}
	return optionFromRow(row)
}

func (db *Database) CreateOption(ctx context.Context, o types.OptionLeg) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := db.options.InsertOption(ctx, optionToRow(o)); err != nil {
		return fmt.Errorf("insert option %s: %w", o.ID, err)
	}
	return nil
}

func (db *Database) UpdateOption(ctx context.Context, o types.OptionLeg) error {
	if err := o.Validate(); err != nil {
		return err
	}
	n, err := db.options.UpdateOption(ctx, optionToRow(o))
	if err != nil {
		return fmt.Errorf("update option %s: %w", o.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("option %s %w", o.ID, ErrOptionNotFound)
	}
	return nil
}

func (db *Database) DeleteOption(ctx context.Context, id string) error {
	n, err := db.options.DeleteOption(ctx, id)
	if err != nil {
		return fmt.Errorf("delete option %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("option %s %w", id, ErrOptionNotFound)
	}
	return nil
}

func optionFromRow(r optionRow) (types.OptionLeg, error) {
	status, err := types.ParseOptionStatus(r.Status)
	if err != nil {
		return types.OptionLeg{}, fmt.Errorf("option %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	optType, err := types.ParseOptionType(r.OptionType)
	if err != nil {
		return types.OptionLeg{}, fmt.Errorf("option %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	o := types.OptionLeg{
		ID:             r.ID,
		UserID:         r.UserID,
		BrokerageID:    r.BrokerageID,
		StrategyID:     r.StrategyID,
		Contract:       r.Contract,
		Type:           optType,
		Strike:         r.Strike,
		Premium:        r.Premium,
		Quantity:       r.Quantity,
		IsPurchased:    r.IsPurchased,
		ExpirationDate: r.ExpirationDate,
		Status:         status,
		Fees:           r.Fees,
		CreatedAt:      r.CreatedAt,
	}
	if err := o.Validate(); err != nil {
		return types.OptionLeg{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return o, nil
}

func optionToRow(o types.OptionLeg) optionRow {
	return optionRow{
		ID:             o.ID,
		UserID:         o.UserID,
		BrokerageID:    o.BrokerageID,
		StrategyID:     o.StrategyID,
		Contract:       o.Contract,
		OptionType:     string(o.Type),
		Strike:         o.Strike,
		Premium:        o.Premium,
		Quantity:       o.Quantity,
		IsPurchased:    o.IsPurchased,
		ExpirationDate: o.ExpirationDate,
		Status:         string(o.Status),
		Fees:           o.Fees,
		CreatedAt:      o.CreatedAt,
	}
}
