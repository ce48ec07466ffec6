package models

import "time"

// Item is an image plus the scheduling state used to order it within a session.
type Item struct {
	Image              Image      `json:"image"`
	EaseFactor         float64    `json:"ease_factor"`
	Interval           int        `json:"interval"`
	Repetitions        int        `json:"repetitions"`
	NextReviewAt       time.Time  `json:"next_review_at"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	LastSeenAt         *time.Time `json:"last_seen_at"`
	Priority           int        `json:"priority"`
}

type AnswerRecord struct {
	ImageID       string    `json:"image_id"`
	UserAnswer    Category  `json:"user_answer"`
	CorrectAnswer Category  `json:"correct_answer"`
	Correct       bool      `json:"correct"`
	AnsweredAt    time.Time `json:"answered_at"`
}
