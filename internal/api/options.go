package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func (s *Server) handleListOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := engine.ParsePeriod(q.Get("period"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var status *types.OptionStatus
	if raw := q.Get("status"); raw != "" {
		st, err := types.ParseOptionStatus(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		status = &st
	}
	legs, err := s.svc.Options(r.Context(), period, status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"options": legs,
	})
}

func (s *Server) handleAddOption(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	no, err := req.toNewOption()
	if err != nil {
		s.writeError(w, err)
		return
	}
	leg, err := s.svc.AddOption(r.Context(), no)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, leg)
}

func (s *Server) handleAddStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	legs := make([]portfolio.NewOption, 0, len(req.Legs))
	for i, l := range req.Legs {
		no, err := l.toNewOption()
		if err != nil {
			s.writeError(w, fmt.Errorf("leg %d: %w", i, err))
			return
		}
		legs = append(legs, no)
	}
	id, stored, err := s.svc.AddStrategy(r.Context(), legs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"strategyId": id,
		"options":    stored,
	})
}

func (s *Server) handleUpdateOption(w http.ResponseWriter, r *http.Request) {
	var req updateOptionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	leg, err := s.svc.UpdateOption(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leg)
}

func (s *Server) handleDeleteOption(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteOption(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	pr, err := parseRange(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	analysis, err := s.svc.Payoff(r.Context(), pr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
