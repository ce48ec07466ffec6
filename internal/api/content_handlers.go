package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/explain"
	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
)

type explanationResponse struct {
	explain.Explanation
	HTML string `json:"html"`
}

type referenceResponse struct {
	Rows []explain.ReferenceRow `json:"rows"`
	HTML string                 `json:"html"`
}

func (s *Server) handleExplanation(w http.ResponseWriter, r *http.Request) {
	cat, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		handleError(w, r, errors.NewNotFoundError("category", chi.URLParam(r, "category")))
		return
	}
	correct := false
	if v := r.URL.Query().Get("correct"); v != "" {
		correct, err = strconv.ParseBool(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("correct", "must be true or false"))
			return
		}
	}
	writeExplanation(w, r, explain.For(cat, correct))
}

func writeExplanation(w http.ResponseWriter, r *http.Request, e explain.Explanation) {
	html, err := e.HTML()
	if err != nil {
		logger.FromContext(r.Context()).Warn("failed to render explanation: %v", err)
	}
	writeJSON(w, r, http.StatusOK, explanationResponse{Explanation: e, HTML: html})
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	html, err := explain.ReferenceHTML()
	if err != nil {
		logger.FromContext(r.Context()).Warn("failed to render reference: %v", err)
	}
	writeJSON(w, r, http.StatusOK, referenceResponse{Rows: explain.QuickReference, HTML: html})
}

func (s *Server) handleMastery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.MasteryFilter{
		OrderBy:  q.Get("order_by"),
		OrderDir: q.Get("order_dir"),
	}

	if v := q.Get("category"); v != "" {
		cat, err := models.ParseCategory(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("category", "must be T1 or T2"))
			return
		}
		filter.Category = string(cat)
	}
	if v := q.Get("due"); v != "" {
		due, err := strconv.ParseBool(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("due", "must be true or false"))
			return
		}
		if due {
			now := time.Now()
			filter.DueAt = &now
		}
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewValidationError(name, "must be a non-negative integer"))
			return
		}
		*dst = n
	}

	view, err := s.QuizService.Mastery(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleImageMastery(w http.ResponseWriter, r *http.Request) {
	rec, err := s.QuizService.MasteryOf(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

const defaultHistoryLimit = 10

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			handleError(w, r, errors.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	sessions, err := s.QuizService.History(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessions)
}
