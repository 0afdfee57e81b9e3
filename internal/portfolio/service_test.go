package portfolio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var testNow = time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T) (*Service, *repository.Database) {
	t.Helper()
	db, err := repository.NewSQLiteDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db, engine.DefaultRegistry(), nil, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
	return svc, db
}

func openLong(t *testing.T, svc *Service, contract string, qty int64, price string) types.Position {
	t.Helper()
	p, err := svc.OpenPosition(context.Background(), NewPosition{
		Contract:   contract,
		Direction:  types.DirectionLong,
		Quantity:   qty,
		EntryPrice: d(price),
		EntryDate:  testNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	return p
}

func TestOpenPosition_MirrorsTransaction(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	p, err := svc.OpenPosition(ctx, NewPosition{
		Contract:   " bgiv25 ",
		Direction:  types.DirectionShort,
		Quantity:   5,
		EntryPrice: d("320"),
	})
	require.NoError(t, err)
	assert.Equal(t, "BGIV25", p.Contract)
	assert.Equal(t, types.StatusOpen, p.Status)
	assert.True(t, p.EntryDate.Equal(testNow))

	txs, err := db.ListTransactions(ctx, types.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, p.ID, txs[0].PositionID)
	assert.Equal(t, types.TransactionSell, txs[0].Type)
	assert.Equal(t, types.StatusOpen, txs[0].Status)
	assert.True(t, txs[0].Total.Equal(d("1600")))
}

func TestOpenPosition_Rejects(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenPosition(ctx, NewPosition{Contract: "XYZ25", Direction: types.DirectionLong, Quantity: 1, EntryPrice: d("10")})
	assert.ErrorIs(t, err, engine.ErrUnknownContract)

	_, err = svc.OpenPosition(ctx, NewPosition{Contract: "BGIV25", Direction: types.DirectionLong, Quantity: 0, EntryPrice: d("10")})
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	positions, err := db.ListPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestClosePosition_Full(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	p := openLong(t, svc, "BGIV25", 10, "300")

	closed, err := svc.ClosePosition(ctx, p.ID, d("310"), 0)
	require.NoError(t, err)
	assert.Equal(t, p.ID, closed.ID)
	assert.Equal(t, types.StatusClosed, closed.Status)
	// 10 contracts * 10 points * 330
	assert.True(t, closed.RealizedPnL.Decimal.Equal(d("33000")))
	assert.True(t, closed.Fees.Equal(d("3.1")))

	stored, err := db.GetPosition(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusClosed, stored.Status)
	assert.True(t, stored.ExitPrice.Decimal.Equal(d("310")))

	txs, err := db.ListTransactions(ctx, types.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	var closing types.Transaction
	for _, tx := range txs {
		if tx.Status == types.StatusClosed {
			closing = tx
		}
	}
	assert.Equal(t, types.TransactionSell, closing.Type)
	assert.Equal(t, int64(10), closing.Quantity)
	assert.True(t, closing.Fees.Equal(d("3.1")))

	_, err = svc.ClosePosition(ctx, p.ID, d("310"), 0)
	assert.ErrorIs(t, err, ErrPositionNotActive)
}

func TestClosePosition_Partial(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	p := openLong(t, svc, "CCMN25", 10, "70")

	closed, err := svc.ClosePosition(ctx, p.ID, d("72"), 4)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, closed.ID)
	assert.Equal(t, int64(4), closed.Quantity)
	// 4 * 2 * 450
	assert.True(t, closed.RealizedPnL.Decimal.Equal(d("3600")))

	remaining, err := db.GetPosition(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, remaining.Status)
	assert.Equal(t, int64(6), remaining.Quantity)

	nets, err := svc.NetPositions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, nets, 1)
	assert.Equal(t, int64(6), nets[0].NetQuantity)
}

func TestClosePosition_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := openLong(t, svc, "BGIV25", 3, "300")

	_, err := svc.ClosePosition(ctx, p.ID, d("0"), 0)
	assert.ErrorIs(t, err, ErrInvalidClosePrice)
	_, err = svc.ClosePosition(ctx, p.ID, d("300"), 4)
	assert.ErrorIs(t, err, ErrInvalidCloseQuantity)
	_, err = svc.ClosePosition(ctx, "missing", d("300"), 0)
	assert.ErrorIs(t, err, repository.ErrPositionNotFound)
}

func TestCloseContract(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	long := openLong(t, svc, "BGIV25", 10, "300")
	_, err := svc.OpenPosition(ctx, NewPosition{
		Contract: "BGIV25", Direction: types.DirectionShort, Quantity: 4, EntryPrice: d("305"),
	})
	require.NoError(t, err)
	openLong(t, svc, "CCMN25", 2, "70")

	closed, err := svc.CloseContract(ctx, "bgiv25", d("310"))
	require.NoError(t, err)
	assert.Len(t, closed, 2)

	stored, err := db.GetPosition(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusClosed, stored.Status)

	nets, err := svc.NetPositions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, nets, 1)
	assert.Equal(t, "CCMN25", nets[0].Contract)

	_, err = svc.CloseContract(ctx, "BGIV25", d("310"))
	assert.ErrorIs(t, err, ErrNothingToClose)
}

func TestCloseContract_NeutralRefused(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	openLong(t, svc, "BGIV25", 5, "300")
	_, err := svc.OpenPosition(ctx, NewPosition{
		Contract: "BGIV25", Direction: types.DirectionShort, Quantity: 5, EntryPrice: d("302"),
	})
	require.NoError(t, err)

	_, err = svc.CloseContract(ctx, "BGIV25", d("310"))
	assert.ErrorIs(t, err, ErrNothingToClose)
}

func TestUpdatePosition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := openLong(t, svc, "BGIV25", 10, "300")

	qty := int64(12)
	mark := d("305")
	updated, err := svc.UpdatePosition(ctx, p.ID, PositionUpdate{Quantity: &qty, CurrentPrice: &mark})
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated.Quantity)
	assert.True(t, updated.CurrentPrice.Equal(mark))

	bad := int64(-1)
	_, err = svc.UpdatePosition(ctx, p.ID, PositionUpdate{Quantity: &bad})
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	_, err = svc.ClosePosition(ctx, p.ID, d("306"), 0)
	require.NoError(t, err)
	_, err = svc.UpdatePosition(ctx, p.ID, PositionUpdate{Quantity: &qty})
	assert.ErrorIs(t, err, ErrPositionNotActive)
}

func TestDuplicateAndNeutralized(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := openLong(t, svc, "BGIV25", 5, "300")

	dup, err := svc.DuplicatePosition(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, dup.ID)
	assert.Equal(t, p.Quantity, dup.Quantity)
	assert.True(t, dup.EntryPrice.Equal(p.EntryPrice))

	short, err := svc.OpenPosition(ctx, NewPosition{
		Contract: "BGIV25", Direction: types.DirectionShort, Quantity: 3, EntryPrice: d("301"),
	})
	require.NoError(t, err)

	neutral, err := svc.IsPositionNeutralized(ctx, short.ID)
	require.NoError(t, err)
	assert.True(t, neutral)
	neutral, err = svc.IsPositionNeutralized(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, neutral)
}

func TestPositions_Period(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	openLong(t, svc, "BGIV25", 1, "300")
	_, err := svc.OpenPosition(ctx, NewPosition{
		Contract: "BGIV25", Direction: types.DirectionLong, Quantity: 1, EntryPrice: d("290"),
		EntryDate: testNow.AddDate(0, -2, 0),
	})
	require.NoError(t, err)

	recent, err := svc.Positions(ctx, engine.Period30d)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	all, err := svc.Positions(ctx, engine.PeriodAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddStrategy(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	id, legs, err := svc.AddStrategy(ctx, []NewOption{
		{Contract: "BGIV25", Type: types.OptionCall, Strike: d("320"), Premium: d("8.5"), Quantity: 3, IsPurchased: true},
		{Contract: "BGIV25", Type: types.OptionCall, Strike: d("340"), Premium: d("3"), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	for _, l := range legs {
		assert.Equal(t, id, l.StrategyID)
		assert.Equal(t, types.OptionOpen, l.Status)
	}
	// round(8.5 * 3 * 5%) = round(1.275)
	assert.True(t, legs[0].Fees.Equal(d("1")))

	txs, err := db.ListTransactions(ctx, types.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	byContract := map[string]types.Transaction{}
	for _, tx := range txs {
		byContract[tx.Contract] = tx
	}
	assert.Equal(t, types.TransactionBuy, byContract["CALL 320"].Type)
	assert.Equal(t, types.TransactionSell, byContract["CALL 340"].Type)

	_, _, err = svc.AddStrategy(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyStrategy)

	_, _, err = svc.AddStrategy(ctx, []NewOption{
		{Contract: "BGIV25", Type: types.OptionPut, Strike: d("300"), Premium: d("2"), Quantity: 1},
		{Contract: "BGIV25", Type: types.OptionPut, Strike: d("290"), Premium: d("2"), Quantity: 0},
	})
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)
	stored, err := db.ListOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestOptions_StatusAndPayoff(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	empty, err := svc.Payoff(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Curve)

	call, err := svc.AddOption(ctx, NewOption{
		Contract: "BGIV25", Type: types.OptionCall, Strike: d("320"), Premium: d("10"), Quantity: 1, IsPurchased: true,
	})
	require.NoError(t, err)
	put, err := svc.AddOption(ctx, NewOption{
		Contract: "BGIV25", Type: types.OptionPut, Strike: d("300"), Premium: d("5"), Quantity: 1, IsPurchased: true,
	})
	require.NoError(t, err)

	expired := types.OptionExpired
	_, err = svc.UpdateOption(ctx, put.ID, OptionUpdate{Status: &expired})
	require.NoError(t, err)

	open := types.OptionOpen
	legs, err := svc.Options(ctx, engine.PeriodAll, &open)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, call.ID, legs[0].ID)

	a, err := svc.Payoff(ctx, &engine.PriceRange{Min: d("300"), Max: d("340"), Step: d("10")})
	require.NoError(t, err)
	require.Len(t, a.Curve, 5)
	// long call only: -10 * 330 below the strike
	assert.True(t, a.MaxLoss.Equal(d("-3300")))
	require.Len(t, a.Breakevens, 1)
	assert.True(t, a.Breakevens[0].Equal(d("330")))
	assert.True(t, a.PremiumPaid.Equal(d("3300")))
}

func TestDeleteTransaction_RemovesOrphans(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	p := openLong(t, svc, "BGIV25", 2, "300")
	keep := openLong(t, svc, "BGIV25", 1, "301")

	txs, err := db.ListTransactions(ctx, types.TransactionFilter{})
	require.NoError(t, err)
	var target string
	for _, tx := range txs {
		if tx.PositionID == p.ID {
			target = tx.ID
		}
	}
	require.NotEmpty(t, target)

	require.NoError(t, svc.DeleteTransaction(ctx, target))
	_, err = db.GetPosition(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrPositionNotFound)
	_, err = db.GetPosition(ctx, keep.ID)
	assert.NoError(t, err)

	removed, err := svc.CleanOrphanedPositions(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNetSummaryAndPerformance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	openLong(t, svc, "BGIV25", 10, "300")
	p := openLong(t, svc, "CCMN25", 2, "70")
	_, err := svc.ClosePosition(ctx, p.ID, d("75"), 0)
	require.NoError(t, err)

	summary, err := svc.NetSummary(ctx, engine.Marks{"BGIV25": d("310")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalNetPositions)
	assert.True(t, summary.TotalUnrealizedPnL.Equal(d("33000")))
	// 300 * 10 * 330
	assert.True(t, summary.TotalExposure.Equal(d("990000")))

	report, err := svc.Performance(ctx, d("100000"), d("0"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalTrades)
	assert.True(t, report.NetProfit.Equal(d("4499.85")))
}
