package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

// WriteNetPositionsCSVFile writes the net positions to a CSV file at path.
func WriteNetPositionsCSVFile(path string, nets []types.NetPosition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create net positions file: %w", err)
	}
	defer f.Close()

	return WriteNetPositionsCSV(f, nets)
}

func WriteNetPositionsCSV(w io.Writer, nets []types.NetPosition) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"contract",
		"product",
		"product_code",
		"net_direction",
		"long_qty",
		"short_qty",
		"net_qty",
		"weighted_entry_price",
		"current_price",
		"contract_size",
		"exposure",
		"unrealized_pnl",
		"positions", // ";"-separated ids
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, n := range nets {
		record := []string{
			n.Contract,
			n.Product,
			n.ProductCode,
			string(n.NetDirection),
			strconv.FormatInt(n.LongQuantity, 10),
			strconv.FormatInt(n.ShortQuantity, 10),
			strconv.FormatInt(n.NetQuantity, 10),
			n.WeightedEntryPrice.StringFixed(4),
			n.CurrentPrice.StringFixed(4),
			strconv.FormatInt(n.ContractSize, 10),
			n.Exposure.StringFixed(2),
			n.UnrealizedPnL.StringFixed(2),
			strings.Join(n.Positions, ";"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func WriteTransactionsCSV(w io.Writer, txs []types.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"id",
		"date", // RFC3339
		"contract",
		"type",
		"quantity",
		"price",
		"total",
		"fees",
		"status",
		"position_id",
		"option_id",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.ID,
			tx.Date.Format(time.RFC3339),
			tx.Contract,
			string(tx.Type),
			strconv.FormatInt(tx.Quantity, 10),
			tx.Price.String(),
			tx.Total.String(),
			tx.Fees.String(),
			string(tx.Status),
			tx.PositionID,
			tx.OptionID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
