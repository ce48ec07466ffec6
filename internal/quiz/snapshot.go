package quiz

import "github.com/vytor/mriflash/internal/models"

// Snapshot is the serializable form of a Session.
type Snapshot struct {
	Phase         models.Phase          `json:"phase"`
	Queue         []models.Item         `json:"items"`
	Cursor        int                   `json:"current_index"`
	Length        models.SessionLength  `json:"session_length"`
	Target        int                   `json:"target"`
	Answers       []models.AnswerRecord `json:"answers"`
	Score         int                   `json:"score"`
	TotalAnswered int                   `json:"total_answered"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:         s.phase,
		Queue:         s.Queue(),
		Cursor:        s.cursor,
		Length:        s.length,
		Target:        s.target,
		Answers:       s.Answers(),
		Score:         s.score,
		TotalAnswered: s.total,
	}
}

// Restore rebuilds a session from a snapshot. A snapshot with an unknown
// phase or impossible counters restores to a fresh setup session.
func Restore(snap Snapshot, opts ...Option) *Session {
	s := New(opts...)
	if !validSnapshot(snap) {
		return s
	}
	s.phase = snap.Phase
	s.queue = append([]models.Item(nil), snap.Queue...)
	s.cursor = snap.Cursor
	s.length = snap.Length
	s.target = snap.Target
	s.answers = append([]models.AnswerRecord(nil), snap.Answers...)
	s.score = snap.Score
	s.total = snap.TotalAnswered
	return s
}

func validSnapshot(snap Snapshot) bool {
	switch snap.Phase {
	case models.PhaseSetup, models.PhaseQuestion, models.PhaseExplanation, models.PhaseResults:
	default:
		return false
	}
	if snap.Score < 0 || snap.TotalAnswered < snap.Score || snap.Cursor < 0 {
		return false
	}
	return snap.TotalAnswered == len(snap.Answers)
}
