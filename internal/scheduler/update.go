package scheduler

import (
	"math"
	"time"

	"github.com/vytor/mriflash/internal/models"
)

const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// A correct answer is graded as a perfect SM-2 response.
	correctQuality = 5
	missPenalty    = 0.2
	day            = 24 * time.Hour
)

// NewItem wraps an image with fresh scheduling state, due immediately.
func NewItem(img models.Image, now time.Time) models.Item {
	item := models.Item{
		Image:        img,
		EaseFactor:   InitialEaseFactor,
		NextReviewAt: now,
	}
	item.Priority = Priority(item, now)
	return item
}

// Update returns the item's state after an answer using a simplified SM-2.
// The input is not modified.
func Update(item models.Item, correct bool, now time.Time) models.Item {
	seen := now
	item.LastSeenAt = &seen

	if !correct {
		item.Repetitions = 0
		item.ConsecutiveCorrect = 0
		item.Interval = 1
		item.NextReviewAt = now.Add(day)
		item.EaseFactor = math.Max(MinEaseFactor, item.EaseFactor-missPenalty)
		item.Priority = Priority(item, now) + incorrectBoost
		return item
	}

	item.Repetitions++
	switch item.Repetitions {
	case 1:
		item.Interval = 1
	case 2:
		item.Interval = 6
	default:
		item.Interval = int(math.Round(float64(item.Interval) * item.EaseFactor))
	}
	item.EaseFactor = math.Max(MinEaseFactor, item.EaseFactor+easeAdjustment(correctQuality))
	item.NextReviewAt = now.Add(time.Duration(item.Interval) * day)
	item.ConsecutiveCorrect++
	item.Priority = Priority(item, now)
	return item
}

// easeAdjustment is the SM-2 ease factor delta for a 0-5 response quality.
func easeAdjustment(quality int) float64 {
	q := float64(5 - quality)
	return 0.1 - q*(0.08+q*0.02)
}
