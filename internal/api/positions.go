package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
)

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contracts": s.svc.Registry().Products(),
	})
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	period, err := engine.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	positions, err := s.svc.Positions(r.Context(), period)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"period":    period,
	})
}

func (s *Server) handleOpenPosition(w http.ResponseWriter, r *http.Request) {
	var req openPositionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	np, err := req.toNewPosition()
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.OpenPosition(r.Context(), np)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req updatePositionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.UpdatePosition(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleClosePosition(w http.ResponseWriter, r *http.Request) {
	var req closePositionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.ClosePosition(r.Context(), chi.URLParam(r, "id"), req.ExitPrice, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDuplicatePosition(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.DuplicatePosition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePosition(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNeutralized(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	neutral, err := s.svc.IsPositionNeutralized(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          id,
		"neutralized": neutral,
	})
}

func (s *Server) handleNetPositions(w http.ResponseWriter, r *http.Request) {
	marks, err := parseMarks(r.URL.Query()["mark"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	nets, err := s.svc.NetPositions(r.Context(), marks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"netPositions": nets,
		"summary":      engine.SummarizeNetPositions(nets),
	})
}

func (s *Server) handleCloseContract(w http.ResponseWriter, r *http.Request) {
	var req closeContractRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	closed, err := s.svc.CloseContract(r.Context(), chi.URLParam(r, "contract"), req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"closed": closed,
	})
}
