package engine

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

type Report struct {
	// Meta / period info
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	TotalTrades int       `json:"totalTrades"`

	// Absolute performance
	InitialCapital    decimal.Decimal `json:"initialCapital"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	AvgProfitPerTrade decimal.Decimal `json:"avgProfitPerTrade"`
	ReturnPercent     decimal.Decimal `json:"returnPercent"`

	// Trade-level distribution metrics
	WinRate decimal.Decimal `json:"winRate"`
	AvgWin  decimal.Decimal `json:"avgWin"`
	AvgLoss decimal.Decimal `json:"avgLoss"`

	// Drawdown & loss streak metrics
	MaxDrawdown          decimal.Decimal `json:"maxDrawdown"`
	MaxDrawdownPercent   decimal.Decimal `json:"maxDrawdownPercent"`
	MaxConsecutiveLosses int             `json:"maxConsecutiveLosses"`

	// Risk-adjusted metrics
	SharpeRatio  decimal.Decimal `json:"sharpeRatio"`
	ProfitFactor decimal.Decimal `json:"profitFactor"`

	// Costs
	TotalFees decimal.Decimal `json:"totalFees"`

	// Breakdown
	PnLByProduct     map[string]decimal.Decimal `json:"pnlByProduct"`
	MonthlyPnL       []MonthlyPnL               `json:"monthlyPnl"`
	CapitalEvolution []EquityPoint              `json:"capitalEvolution"`
}

type MonthlyPnL struct {
	Month string          `json:"month"`
	PnL   decimal.Decimal `json:"pnl"`
}

type EquityPoint struct {
	Time   time.Time       `json:"time"`
	Equity decimal.Decimal `json:"equity"`
}

// closedTrade is one closed position reduced to what the metrics need.
type closedTrade struct {
	id        string
	product   string
	closeTime time.Time
	netPnL    decimal.Decimal
	fees      decimal.Decimal
}

// GenerateReport computes the performance of the closed positions, treated as
// trades in the order they were closed.
func GenerateReport(positions []types.Position, reg *Registry, initialCapital, riskFreeRate decimal.Decimal) (*Report, error) {
	trades, err := closedTrades(positions, reg)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalTrades:    len(trades),
		InitialCapital: initialCapital,
	}
	if len(trades) > 0 {
		report.StartDate = trades[0].closeTime
		report.EndDate = trades[len(trades)-1].closeTime
	}

	var wg sync.WaitGroup
	wg.Add(8)
	go func() {
		report.NetProfit, report.AvgProfitPerTrade, report.ReturnPercent = calcNetProfit(trades, initialCapital, &wg)
	}()
	go func() {
		report.WinRate, report.AvgWin, report.AvgLoss = calcWinLoss(trades, &wg)
	}()
	go func() {
		report.ProfitFactor = calcProfitFactor(trades, &wg)
	}()
	go func() {
		report.MaxDrawdown, report.MaxDrawdownPercent, report.CapitalEvolution = calcDrawdownMetrics(trades, initialCapital, &wg)
	}()
	go func() {
		report.MaxConsecutiveLosses = calcMaxConsecutiveLosses(trades, &wg)
	}()
	go func() {
		report.SharpeRatio = calcSharpeRatio(trades, initialCapital, riskFreeRate, &wg)
	}()
	go func() {
		report.TotalFees = calcTotalFees(trades, &wg)
	}()
	go func() {
		report.PnLByProduct, report.MonthlyPnL = calcBreakdown(trades, &wg)
	}()
	wg.Wait()

	return report, nil
}

func closedTrades(positions []types.Position, reg *Registry) ([]closedTrade, error) {
	var trades []closedTrade
	for _, p := range positions {
		if p.Status != types.StatusClosed {
			continue
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		product, err := reg.Resolve(p.Contract)
		if err != nil {
			return nil, err
		}
		gross := p.RealizedPnL.Decimal
		if !p.RealizedPnL.Valid {
			gross = RealizedPnL(p.Direction, p.Quantity, p.EntryPrice, p.ExitPrice.Decimal, product.ContractSize)
		}
		trades = append(trades, closedTrade{
			id:        p.ID,
			product:   product.Code,
			closeTime: *p.ExitDate,
			netPnL:    gross.Sub(p.Fees),
			fees:      p.Fees,
		})
	}
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].closeTime.Equal(trades[j].closeTime) {
			return trades[i].id < trades[j].id
		}
		return trades[i].closeTime.Before(trades[j].closeTime)
	})
	return trades, nil
}

func calcNetProfit(trades []closedTrade, initialCapital decimal.Decimal, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	defer wg.Done()

	net := decimal.Zero
	for _, tr := range trades {
		net = net.Add(tr.netPnL)
	}
	avg := decimal.Zero
	if len(trades) > 0 {
		avg = net.Div(decimal.NewFromInt(int64(len(trades))))
	}
	ret := decimal.Zero
	if initialCapital.IsPositive() {
		ret = net.Div(initialCapital).Mul(hundred)
	}
	return net, avg, ret
}

func calcWinLoss(trades []closedTrade, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	defer wg.Done()

	sumWins := decimal.Zero
	sumLosses := decimal.Zero // absolute amounts
	winCount := 0
	lossCount := 0

	for _, tr := range trades {
		switch {
		case tr.netPnL.IsPositive():
			sumWins = sumWins.Add(tr.netPnL)
			winCount++
		case tr.netPnL.IsNegative():
			sumLosses = sumLosses.Add(tr.netPnL.Abs())
			lossCount++
		}
	}

	winRate, avgWin, avgLoss := decimal.Zero, decimal.Zero, decimal.Zero
	if len(trades) > 0 {
		winRate = decimal.NewFromInt(int64(winCount)).Div(decimal.NewFromInt(int64(len(trades)))).Mul(hundred)
	}
	if winCount > 0 {
		avgWin = sumWins.Div(decimal.NewFromInt(int64(winCount)))
	}
	if lossCount > 0 {
		avgLoss = sumLosses.Div(decimal.NewFromInt(int64(lossCount)))
	}
	return winRate, avgWin, avgLoss
}

func calcProfitFactor(trades []closedTrade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	grossWin := decimal.Zero
	grossLoss := decimal.Zero
	for _, tr := range trades {
		if tr.netPnL.IsPositive() {
			grossWin = grossWin.Add(tr.netPnL)
		} else {
			grossLoss = grossLoss.Add(tr.netPnL.Abs())
		}
	}
	if grossLoss.IsZero() {
		return decimal.Zero
	}
	return grossWin.Div(grossLoss)
}

func calcDrawdownMetrics(trades []closedTrade, initialCapital decimal.Decimal, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, []EquityPoint) {
	defer wg.Done()

	equity := initialCapital
	peak := initialCapital
	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	curve := make([]EquityPoint, 0, len(trades))

	for _, tr := range trades {
		equity = equity.Add(tr.netPnL)
		curve = append(curve, EquityPoint{Time: tr.closeTime, Equity: equity})

		if equity.GreaterThan(peak) {
			peak = equity
			continue
		}
		dd := peak.Sub(equity)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
			if peak.IsPositive() {
				maxDDPct = dd.Div(peak).Mul(hundred)
			}
		}
	}
	return maxDD, maxDDPct, curve
}

func calcMaxConsecutiveLosses(trades []closedTrade, wg *sync.WaitGroup) int {
	defer wg.Done()

	maxStreak, streak := 0, 0
	for _, tr := range trades {
		if tr.netPnL.IsNegative() {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
			continue
		}
		streak = 0
	}
	return maxStreak
}

// calcSharpeRatio uses per-trade returns on the equity held before each trade.
func calcSharpeRatio(trades []closedTrade, initialCapital, riskFreeRate decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	if len(trades) < 2 || !initialCapital.IsPositive() {
		return decimal.Zero
	}

	returns := make([]float64, 0, len(trades))
	equity := initialCapital
	for _, tr := range trades {
		if !equity.IsPositive() {
			break
		}
		returns = append(returns, tr.netPnL.Div(equity).InexactFloat64())
		equity = equity.Add(tr.netPnL)
	}
	if len(returns) < 2 {
		return decimal.Zero
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat((mean - riskFreeRate.InexactFloat64()) / std).Round(4)
}

func calcTotalFees(trades []closedTrade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	total := decimal.Zero
	for _, tr := range trades {
		total = total.Add(tr.fees)
	}
	return total
}

func calcBreakdown(trades []closedTrade, wg *sync.WaitGroup) (map[string]decimal.Decimal, []MonthlyPnL) {
	defer wg.Done()

	byProduct := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	for _, tr := range trades {
		byProduct[tr.product] = byProduct[tr.product].Add(tr.netPnL)
		month := tr.closeTime.UTC().Format("2006-01")
		byMonth[month] = byMonth[month].Add(tr.netPnL)
	}

	monthly := make([]MonthlyPnL, 0, len(byMonth))
	for m, pnl := range byMonth {
		monthly = append(monthly, MonthlyPnL{Month: m, PnL: pnl})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })
	return byProduct, monthly
}

func WriteReport(w io.Writer, report *Report) error {
	lines := []string{
		"===== Performance Report =====",
		fmt.Sprintf("Period:                %s - %s", fmtDate(report.StartDate), fmtDate(report.EndDate)),
		fmt.Sprintf("Total Trades:          %d", report.TotalTrades),
		"",
		"-- Absolute Performance --",
		fmt.Sprintf("Initial Capital:       %s", report.InitialCapital.StringFixed(2)),
		fmt.Sprintf("Net Profit:            %s", report.NetProfit.StringFixed(2)),
		fmt.Sprintf("Avg Profit/Trade:      %s", report.AvgProfitPerTrade.StringFixed(2)),
		fmt.Sprintf("Return %%:              %s", report.ReturnPercent.StringFixed(2)),
		"",
		"-- Trade-Level Metrics --",
		fmt.Sprintf("Win Rate %%:            %s", report.WinRate.StringFixed(2)),
		fmt.Sprintf("Avg Win:               %s", report.AvgWin.StringFixed(2)),
		fmt.Sprintf("Avg Loss:              %s", report.AvgLoss.StringFixed(2)),
		"",
		"-- Drawdown Metrics --",
		fmt.Sprintf("Max Drawdown:          %s", report.MaxDrawdown.StringFixed(2)),
		fmt.Sprintf("Max Drawdown %%:        %s", report.MaxDrawdownPercent.StringFixed(2)),
		fmt.Sprintf("Max Consecutive Losses:%d", report.MaxConsecutiveLosses),
		"",
		"-- Risk-Adjusted Metrics --",
		fmt.Sprintf("Sharpe Ratio:          %s", report.SharpeRatio),
		fmt.Sprintf("Profit Factor:         %s", report.ProfitFactor.StringFixed(4)),
		"",
		"-- Costs --",
		fmt.Sprintf("Total Fees:            %s", report.TotalFees.StringFixed(2)),
	}

	if len(report.PnLByProduct) > 0 {
		lines = append(lines, "", "-- By Product --")
		codes := make([]string, 0, len(report.PnLByProduct))
		for c := range report.PnLByProduct {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		for _, c := range codes {
			lines = append(lines, fmt.Sprintf("%-23s%s", c+":", report.PnLByProduct[c].StringFixed(2)))
		}
	}
	if len(report.MonthlyPnL) > 0 {
		lines = append(lines, "", "-- By Month --")
		for _, m := range report.MonthlyPnL {
			lines = append(lines, fmt.Sprintf("%-23s%s", m.Month+":", m.PnL.StringFixed(2)))
		}
	}
	lines = append(lines, "==============================")

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
