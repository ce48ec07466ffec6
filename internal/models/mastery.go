package models

import "time"

// MasteryRecord is the long-lived scheduling state of one image, carried
// across sessions.
type MasteryRecord struct {
	ImageID            string     `json:"image_id" db:"image_id"`
	Category           string     `json:"category" db:"category"`
	EaseFactor         float64    `json:"ease_factor" db:"ease_factor"`
	IntervalDays       int        `json:"interval_days" db:"interval_days"`
	Repetitions        int        `json:"repetitions" db:"repetitions"`
	ConsecutiveCorrect int        `json:"consecutive_correct" db:"consecutive_correct"`
	NextReviewAt       time.Time  `json:"next_review_at" db:"next_review_at"`
	LastSeenAt         *time.Time `json:"last_seen_at" db:"last_seen_at"`
	TimesSeen          int        `json:"times_seen" db:"times_seen"`
	TimesCorrect       int        `json:"times_correct" db:"times_correct"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// MasteryFromItem converts an item's scheduling state into a record.
// TimesSeen and TimesCorrect are accumulated by the repository.
func MasteryFromItem(item Item, correct bool, now time.Time) MasteryRecord {
	r := MasteryRecord{
		ImageID:            item.Image.ID,
		Category:           string(item.Image.Category),
		EaseFactor:         item.EaseFactor,
		IntervalDays:       item.Interval,
		Repetitions:        item.Repetitions,
		ConsecutiveCorrect: item.ConsecutiveCorrect,
		NextReviewAt:       item.NextReviewAt,
		LastSeenAt:         item.LastSeenAt,
		TimesSeen:          1,
		UpdatedAt:          now,
	}
	if correct {
		r.TimesCorrect = 1
	}
	return r
}

type MasteryFilter struct {
	Category string
	DueAt    *time.Time
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}

type MasteryStat struct {
	Category      string  `json:"category" db:"category"`
	Images        int     `json:"images" db:"images"`
	TimesSeen     int     `json:"times_seen" db:"times_seen"`
	TimesCorrect  int     `json:"times_correct" db:"times_correct"`
	AvgEaseFactor float64 `json:"avg_ease_factor" db:"avg_ease_factor"`
	Due           int     `json:"due" db:"due"`
}
