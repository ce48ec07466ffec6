package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Phase string

const (
	PhaseSetup       Phase = "setup"
	PhaseQuestion    Phase = "question"
	PhaseExplanation Phase = "explanation"
	PhaseResults     Phase = "results"
)

// SessionLength is the requested number of questions. The zero value,
// SessionAll, means every image in the pool.
type SessionLength int

const SessionAll SessionLength = 0

// SessionLengthOptions are the lengths a learner can pick from.
var SessionLengthOptions = []SessionLength{20, 50, 100, SessionAll}

func ParseSessionLength(s string) (SessionLength, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" {
		return SessionAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid session length %q", s)
	}
	l := SessionLength(n)
	if !l.Valid() {
		return 0, fmt.Errorf("session length %d is not one of 20, 50, 100, all", n)
	}
	return l, nil
}

// Valid reports whether l is one of SessionLengthOptions.
func (l SessionLength) Valid() bool {
	for _, opt := range SessionLengthOptions {
		if l == opt {
			return true
		}
	}
	return false
}

func (l SessionLength) IsAll() bool {
	return l <= SessionAll
}

// Resolve returns the number of items a session over a pool of poolSize gets.
func (l SessionLength) Resolve(poolSize int) int {
	if l.IsAll() || int(l) > poolSize {
		return poolSize
	}
	return int(l)
}

func (l SessionLength) String() string {
	if l.IsAll() {
		return "all"
	}
	return strconv.Itoa(int(l))
}

func (l SessionLength) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *SessionLength) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "all" {
		*l = SessionAll
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid session length %q", s)
	}
	*l = SessionLength(n)
	return nil
}

type SessionRecord struct {
	ID            string     `json:"id" db:"id"`
	SessionLength string     `json:"session_length" db:"session_length"`
	Target        int        `json:"target" db:"target"`
	Score         int        `json:"score" db:"score"`
	TotalAnswered int        `json:"total_answered" db:"total_answered"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at" db:"completed_at"`
}

type AnswerHistory struct {
	ID            int64     `json:"id" db:"id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	ImageID       string    `json:"image_id" db:"image_id"`
	UserAnswer    string    `json:"user_answer" db:"user_answer"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	Correct       bool      `json:"correct" db:"correct"`
	AnsweredAt    time.Time `json:"answered_at" db:"answered_at"`
}
