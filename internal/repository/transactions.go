package repository

import (
	"context"
	"fmt"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

// ListTransactions returns the transactions inside the filter window, newest
// first.
func (db *Database) ListTransactions(ctx context.Context, f types.TransactionFilter) ([]types.Transaction, error) {
	rows, err := db.transactions.ListTransactions(ctx, transactionRange{Start: f.Start, End: f.End})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]types.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := transactionFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (db *Database) CreateTransaction(ctx context.Context, tx types.Transaction) error {
	if err := db.transactions.InsertTransaction(ctx, transactionToRow(tx)); err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (db *Database) DeleteTransaction(ctx context.Context, id string) error {
	n, err := db.transactions.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s %w", id, ErrTransactionNotFound)
	}
	return nil
}

func transactionFromRow(r transactionRow) (types.Transaction, error) {
	txType, err := types.ParseTransactionType(r.Type)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("transaction %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	status, err := types.ParseStatus(r.Status)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("transaction %s: %w: %w", r.ID, ErrCorruptRecord, err)
	}
	return types.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		BrokerageID: r.BrokerageID,
		PositionID:  r.PositionID,
		OptionID:    r.OptionID,
		Date:        r.Date,
		Contract:    r.Contract,
		Type:        txType,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Total:       r.Total,
		Fees:        r.Fees,
		Status:      status,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func transactionToRow(tx types.Transaction) transactionRow {
	return transactionRow{
		ID:          tx.ID,
		UserID:      tx.UserID,
		BrokerageID: tx.BrokerageID,
		PositionID:  tx.PositionID,
		OptionID:    tx.OptionID,
		Date:        tx.Date,
		Contract:    tx.Contract,
		Type:        string(tx.Type),
		Quantity:    tx.Quantity,
		Price:       tx.Price,
		Total:       tx.Total,
		Fees:        tx.Fees,
		Status:      string(tx.Status),
		CreatedAt:   tx.CreatedAt,
	}
}
