package api

import (
	"net/http"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func (s *Server) handleCalculatePnL(w http.ResponseWriter, r *http.Request) {
	var req pnlRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.checkPrices(); err != nil {
		s.writeError(w, err)
		return
	}
	dir, err := types.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	size, err := s.svc.Registry().ContractSize(req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.CalculatePositionPnL(dir, req.Quantity, req.EntryPrice, req.CurrentPrice, size))
}

func (s *Server) handleTargetPrice(w http.ResponseWriter, r *http.Request) {
	var req targetPriceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.checkPrices(); err != nil {
		s.writeError(w, err)
		return
	}
	dir, err := types.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	size, err := s.svc.Registry().ContractSize(req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	price := engine.CalculateTargetPrice(dir, req.EntryPrice, req.Quantity, size, req.TargetPnL)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"targetPrice": price,
	})
}

func (s *Server) handleRentability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	capital, err := parseDecimalParam(q.Get("initialCapital"), s.initialCapital)
	if err != nil {
		s.writeError(w, err)
		return
	}
	riskFree, err := parseDecimalParam(q.Get("riskFreeRate"), s.riskFreeRate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.svc.Performance(r.Context(), capital, riskFree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
