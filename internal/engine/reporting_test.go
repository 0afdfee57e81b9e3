package engine

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func closedPos(id, contract string, dir types.Direction, qty int64, entry, exit, fees string, closedAt time.Time) types.Position {
	p := pos(id, contract, dir, qty, entry)
	p.Status = types.StatusClosed
	p.ExitDate = &closedAt
	p.ExitPrice = decimal.NewNullDecimal(d(exit))
	p.Fees = d(fees)
	return p
}

func reportFixture() []types.Position {
	jan10 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	feb05 := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	realized := closedPos("t3", "BGIJ25", types.DirectionLong, 1, "300", "300", "0", feb05)
	realized.RealizedPnL = decimal.NewNullDecimal(d("500"))

	return []types.Position{
		realized,
		closedPos("t2", "CCMF25", types.DirectionShort, 2, "80", "81", "0", jan20),
		closedPos("t1", "BGIF25", types.DirectionLong, 1, "300", "301", "30", jan10),
		pos("open", "BGIV25", types.DirectionLong, 5, "330"),
	}
}

func TestGenerateReport(t *testing.T) {
	report, err := GenerateReport(reportFixture(), DefaultRegistry(), d("10000"), decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}

	if report.TotalTrades != 3 {
		t.Errorf("TotalTrades got = %d, want 3", report.TotalTrades)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"NetProfit", report.NetProfit, "-100"},
		{"ReturnPercent", report.ReturnPercent, "-1"},
		{"AvgWin", report.AvgWin, "400"},
		{"AvgLoss", report.AvgLoss, "900"},
		{"MaxDrawdown", report.MaxDrawdown, "900"},
		{"TotalFees", report.TotalFees, "30"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s got = %v, want %v", c.name, c.got, c.want)
		}
	}
	if report.WinRate.StringFixed(2) != "66.67" {
		t.Errorf("WinRate got = %v", report.WinRate)
	}
	if report.ProfitFactor.StringFixed(4) != "0.8889" {
		t.Errorf("ProfitFactor got = %v", report.ProfitFactor)
	}
	if report.MaxConsecutiveLosses != 1 {
		t.Errorf("MaxConsecutiveLosses got = %d, want 1", report.MaxConsecutiveLosses)
	}
	if !report.PnLByProduct["BGI"].Equal(d("800")) || !report.PnLByProduct["CCM"].Equal(d("-900")) {
		t.Errorf("PnLByProduct got = %v", report.PnLByProduct)
	}
	if len(report.MonthlyPnL) != 2 || report.MonthlyPnL[0].Month != "2025-01" || !report.MonthlyPnL[0].PnL.Equal(d("-600")) {
		t.Errorf("MonthlyPnL got = %+v", report.MonthlyPnL)
	}
	if len(report.CapitalEvolution) != 3 || !report.CapitalEvolution[2].Equity.Equal(d("9900")) {
		t.Errorf("CapitalEvolution got = %+v", report.CapitalEvolution)
	}
	if report.SharpeRatio.IsZero() {
		t.Errorf("SharpeRatio should be computed for three trades")
	}
}

func TestGenerateReport_Empty(t *testing.T) {
	report, err := GenerateReport(nil, DefaultRegistry(), d("10000"), decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalTrades != 0 || !report.NetProfit.IsZero() || !report.SharpeRatio.IsZero() || !report.WinRate.IsZero() {
		t.Errorf("empty report got = %+v", report)
	}
}

func TestCalcMaxConsecutiveLosses(t *testing.T) {
	tests := []struct {
		name string
		pnls []string
		want int
	}{
		{name: "no trades", pnls: nil, want: 0},
		{name: "all wins", pnls: []string{"1", "2"}, want: 0},
		{name: "streak of three", pnls: []string{"-1", "2", "-1", "-1", "-3", "0", "-2"}, want: 3},
		{name: "flat breaks streak", pnls: []string{"-1", "0", "-1"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := make([]closedTrade, len(tt.pnls))
			for i, p := range tt.pnls {
				trades[i] = closedTrade{netPnL: d(p)}
			}
			var wg sync.WaitGroup
			wg.Add(1)
			if got := calcMaxConsecutiveLosses(trades, &wg); got != tt.want {
				t.Errorf("calcMaxConsecutiveLosses() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	report, err := GenerateReport(reportFixture(), DefaultRegistry(), d("10000"), decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, report); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Net Profit:            -100.00", "Total Trades:          3", "BGI:", "2025-02:"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteReport() output missing %q:\n%s", want, out)
		}
	}
}
