package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var ErrUnknownPeriod = errors.New("unknown period")

type Period string

const (
	Period30d Period = "30d"
	Period60d Period = "60d"
	Period90d Period = "90d"
	Period6m  Period = "6m"
	Period1y  Period = "1y"
	PeriodAll Period = "all"
)

// ParsePeriod accepts the lookback windows offered by the dashboards. An
// empty string means all.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case "":
		return PeriodAll, nil
	case Period30d, Period60d, Period90d, Period6m, Period1y, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("period %q: %w", raw, ErrUnknownPeriod)
}

// Since is the start of the window ending at now. The zero time is returned
// for PeriodAll.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case Period30d:
		return now.AddDate(0, 0, -30)
	case Period60d:
		return now.AddDate(0, 0, -60)
	case Period90d:
		return now.AddDate(0, 0, -90)
	case Period6m:
		return now.AddDate(0, -6, 0)
	case Period1y:
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}

func FilterPositionsByPeriod(positions []types.Position, p Period, now time.Time) []types.Position {
	since := p.Since(now)
	out := make([]types.Position, 0, len(positions))
	for _, pos := range positions {
		if pos.EntryDate.Before(since) {
			continue
		}
		out = append(out, pos)
	}
	return out
}

func FilterOptionsByPeriod(legs []types.OptionLeg, p Period, now time.Time) []types.OptionLeg {
	since := p.Since(now)
	out := make([]types.OptionLeg, 0, len(legs))
	for _, l := range legs {
		if l.CreatedAt.Before(since) {
			continue
		}
		out = append(out, l)
	}
	return out
}
