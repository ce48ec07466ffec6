package api

import (
	"net/http"

	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
)

type startRequest struct {
	Length string `json:"length"`
}

type answerRequest struct {
	Label string `json:"label"`
}

// Actions that are not valid in the current phase still answer 200; the
// view comes back with applied=false and the unchanged state.

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	view := s.QuizService.View(r.Context())
	if view.Condition == quiz.ConditionInconsistent {
		handleError(w, r, errors.NewInvalidStateError("session is inconsistent; reset it"))
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	length := s.DefaultLength
	if !length.Valid() {
		length = quiz.DefaultLength
	}
	if req.Length != "" {
		l, err := models.ParseSessionLength(req.Length)
		if err != nil {
			handleError(w, r, errors.NewValidationError("length", err.Error()))
			return
		}
		length = l
	}

	view, err := s.QuizService.Start(r.Context(), length)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	label, err := models.ParseCategory(req.Label)
	if err != nil {
		handleError(w, r, errors.NewValidationError("label", "must be T1 or T2"))
		return
	}

	view, err := s.QuizService.Submit(r.Context(), label)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.Advance(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Finish(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Reset(r.Context()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Summary(r.Context()))
}

func (s *Server) handleSessionExplanation(w http.ResponseWriter, r *http.Request) {
	e, err := s.QuizService.Explanation(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeExplanation(w, r, e)
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Pool().Stats)
}
