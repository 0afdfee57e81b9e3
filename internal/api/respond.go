package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, status, errorResponse{Error: "validation failed", Details: verrs.Error()})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, errBadRequest),
		errors.Is(err, types.ErrInvalidQuantity),
		errors.Is(err, types.ErrInvalidPrice),
		errors.Is(err, types.ErrInvalidDirection),
		errors.Is(err, types.ErrMissingContract),
		errors.Is(err, types.ErrMissingExit),
		errors.Is(err, types.ErrUnknownStatus),
		errors.Is(err, types.ErrUnknownDirection),
		errors.Is(err, types.ErrUnknownOptionType),
		errors.Is(err, engine.ErrInvalidRange),
		errors.Is(err, engine.ErrUnknownPeriod),
		errors.Is(err, portfolio.ErrInvalidClosePrice),
		errors.Is(err, portfolio.ErrInvalidCloseQuantity),
		errors.Is(err, portfolio.ErrEmptyStrategy):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrPositionNotFound),
		errors.Is(err, repository.ErrOptionNotFound),
		errors.Is(err, repository.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownContract),
		errors.Is(err, portfolio.ErrNothingToClose),
		errors.Is(err, portfolio.ErrPositionNotActive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
