package types

import (
	"fmt"
	"strings"
)

type Direction string

type NetDirection string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"

	NetLong    NetDirection = "LONG"
	NetShort   NetDirection = "SHORT"
	NetNeutral NetDirection = "NEUTRAL"
)

var directionAliases = map[string]Direction{
	"LONG":   DirectionLong,
	"COMPRA": DirectionLong,
	"BUY":    DirectionLong,
	"SHORT":  DirectionShort,
	"VENDA":  DirectionShort,
	"SELL":   DirectionShort,
}

// ParseDirection maps any of the external spellings of a trade side onto the
// canonical Direction.
func ParseDirection(raw string) (Direction, error) {
	d, ok := directionAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("direction %q: %w", raw, ErrUnknownDirection)
	}
	return d, nil
}

func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Opposite returns the side that closes a position opened in d.
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}

// Sign is +1 for LONG and -1 for SHORT.
func (d Direction) Sign() int64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}
