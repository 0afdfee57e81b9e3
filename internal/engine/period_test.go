package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw     string
		want    Period
		wantErr bool
	}{
		{raw: "30d", want: Period30d},
		{raw: " 6M ", want: Period6m},
		{raw: "1y", want: Period1y},
		{raw: "", want: PeriodAll},
		{raw: "all", want: PeriodAll},
		{raw: "2w", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePeriod(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPeriod) {
					t.Errorf("ParsePeriod() err = %v, want ErrUnknownPeriod", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePeriod() got = %v, %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestFilterPositionsByPeriod(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	at := func(id string, ago time.Duration) types.Position {
		return types.Position{ID: id, EntryDate: now.Add(-ago)}
	}
	positions := []types.Position{
		at("recent", 24*time.Hour),
		at("month", 45*24*time.Hour),
		at("old", 400*24*time.Hour),
	}

	tests := []struct {
		period Period
		want   []string
	}{
		{period: Period30d, want: []string{"recent"}},
		{period: Period60d, want: []string{"recent", "month"}},
		{period: Period1y, want: []string{"recent", "month"}},
		{period: PeriodAll, want: []string{"recent", "month", "old"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := FilterPositionsByPeriod(positions, tt.period, now)
			if len(got) != len(tt.want) {
				t.Fatalf("FilterPositionsByPeriod() got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("FilterPositionsByPeriod()[%d] got = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterOptionsByPeriod(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	legs := []types.OptionLeg{
		{ID: "new", CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "old", CreatedAt: now.AddDate(0, -7, 0)},
	}
	got := FilterOptionsByPeriod(legs, Period6m, now)
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("FilterOptionsByPeriod() got = %+v", got)
	}
}
