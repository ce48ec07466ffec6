package services

import (
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
)

// ItemView is what the learner sees of the current item. The category is
// withheld until the item has been answered.
type ItemView struct {
	ImageID  string          `json:"image_id"`
	URL      string          `json:"url"`
	Subject  string          `json:"subject"`
	Category models.Category `json:"category,omitempty"`
}

// SessionView is the presentation state of the session after an action.
type SessionView struct {
	// Applied is false when the action was not valid in the current phase.
	Applied       bool                 `json:"applied"`
	SessionID     string               `json:"session_id,omitempty"`
	Phase         models.Phase         `json:"phase"`
	Condition     quiz.Condition       `json:"condition"`
	Length        models.SessionLength `json:"session_length"`
	Target        int                  `json:"target"`
	Position      int                  `json:"position"`
	Score         int                  `json:"score"`
	TotalAnswered int                  `json:"total_answered"`
	Current       *ItemView            `json:"current,omitempty"`
	LastAnswer    *models.AnswerRecord `json:"last_answer,omitempty"`
	LastReview    *ReviewView          `json:"last_review,omitempty"`
	Upcoming      []string             `json:"upcoming,omitempty"`
}

// ReviewView describes the scheduling outcome of the last advance.
type ReviewView struct {
	ImageID      string  `json:"image_id"`
	Correct      bool    `json:"correct"`
	Reinserted   bool    `json:"reinserted"`
	Position     int     `json:"position"`
	EaseFactor   float64 `json:"ease_factor"`
	IntervalDays int     `json:"interval_days"`
	Repetitions  int     `json:"repetitions"`
	Priority     int     `json:"priority"`
}

type SummaryView struct {
	SessionID string              `json:"session_id,omitempty"`
	Summary   quiz.Summary        `json:"summary"`
	Attempts  []quiz.AttemptGroup `json:"attempts"`
}

// SessionHistoryView is one recorded session with its answers in order.
type SessionHistoryView struct {
	models.SessionRecord
	Answers []models.AnswerHistory `json:"answers"`
}

type MasteryView struct {
	Records []models.MasteryRecord `json:"records"`
	Stats   []models.MasteryStat   `json:"stats"`
}

// view renders the session. Callers hold s.mu.
func (s *quizService) view(applied bool) SessionView {
	sess := s.session
	v := SessionView{
		Applied:       applied,
		SessionID:     s.sessionID,
		Phase:         sess.Phase(),
		Condition:     sess.Condition(),
		Length:        sess.Length(),
		Target:        sess.Target(),
		Score:         sess.Score(),
		TotalAnswered: sess.TotalAnswered(),
	}

	// Position is 1-based and never runs past the target.
	v.Position = min(sess.TotalAnswered()+1, sess.Target())
	if sess.Phase() == models.PhaseExplanation || sess.Phase() == models.PhaseResults {
		v.Position = sess.TotalAnswered()
	}

	if sess.Phase() == models.PhaseQuestion || sess.Phase() == models.PhaseExplanation {
		if cur, ok := sess.Current(); ok {
			iv := &ItemView{ImageID: cur.Image.ID, URL: cur.Image.URL(), Subject: cur.Image.Subject}
			if sess.Phase() == models.PhaseExplanation {
				iv.Category = cur.Image.Category
			}
			v.Current = iv
		}
		for _, item := range sess.Upcoming(s.deps.PrefetchAhead) {
			v.Upcoming = append(v.Upcoming, item.Image.URL())
		}
	}

	if sess.Phase() != models.PhaseSetup {
		if last, ok := sess.LastAnswer(); ok {
			v.LastAnswer = &last
		}
	}
	if r, ok := sess.LastReview(); ok && sess.Phase() != models.PhaseSetup {
		v.LastReview = &ReviewView{
			ImageID:      r.Item.Image.ID,
			Correct:      r.Correct,
			Reinserted:   r.Reinserted,
			Position:     r.Position,
			EaseFactor:   r.Item.EaseFactor,
			IntervalDays: r.Item.Interval,
			Repetitions:  r.Item.Repetitions,
			Priority:     r.Item.Priority,
		}
	}
	return v
}
