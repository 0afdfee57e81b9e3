package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrUnknownDirection  = errors.New("unknown direction")
	ErrUnknownOptionType = errors.New("unknown option type")
)

// Status is the canonical lifecycle state of a position. Every external
// vocabulary is collapsed into it by ParseStatus before records reach the engine.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

var statusAliases = map[string]Status{
	"OPEN":      StatusOpen,
	"EM_ABERTO": StatusOpen,
	"EXECUTADA": StatusOpen,
	"ACTIVE":    StatusOpen,
	"CLOSED":    StatusClosed,
	"FECHADA":   StatusClosed,
	"NETTED":    StatusClosed,
	"CANCELLED": StatusCancelled,
	"CANCELED":  StatusCancelled,
	"CANCELADA": StatusCancelled,
}

func ParseStatus(raw string) (Status, error) {
	s, ok := statusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("status %q: %w", raw, ErrUnknownStatus)
	}
	return s, nil
}

// IsActive reports whether a position in this state takes part in netting.
func (s Status) IsActive() bool {
	return s == StatusOpen
}

type OptionStatus string

const (
	OptionOpen      OptionStatus = "OPEN"
	OptionExpired   OptionStatus = "EXPIRED"
	OptionExercised OptionStatus = "EXERCISED"
	OptionClosed    OptionStatus = "CLOSED"
)

var optionStatusAliases = map[string]OptionStatus{
	"OPEN":      OptionOpen,
	"ATIVA":     OptionOpen,
	"EXPIRED":   OptionExpired,
	"EXPIRADA":  OptionExpired,
	"EXERCISED": OptionExercised,
	"EXERCIDA":  OptionExercised,
	"CLOSED":    OptionClosed,
	"FECHADA":   OptionClosed,
}

func ParseOptionStatus(raw string) (OptionStatus, error) {
	s, ok := optionStatusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("option status %q: %w", raw, ErrUnknownStatus)
	}
	return s, nil
}
