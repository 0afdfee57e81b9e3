package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate(q.Get("startDate"), false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	end, err := parseDate(q.Get("endDate"), true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	txs, err := s.svc.Transactions(r.Context(), types.TransactionFilter{Start: start, End: end})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
