package scheduler

import (
	"time"

	"github.com/vytor/mriflash/internal/models"
)

const (
	newItemBonus       = 50
	seenWithinHour     = 20
	seenWithinDay      = 10
	consecutivePenalty = 5
	dueBonus           = 25
	incorrectBoost     = 30
	recentWindow       = time.Hour
	staleWindow        = 24 * time.Hour
)

// Priority scores how urgently an item should be shown. Higher comes first.
// The score is never negative.
func Priority(item models.Item, now time.Time) int {
	p := 0

	if item.LastSeenAt == nil {
		p += newItemBonus
	} else {
		switch since := now.Sub(*item.LastSeenAt); {
		case since < recentWindow:
			p -= seenWithinHour
		case since < staleWindow:
			p -= seenWithinDay
		}
	}

	p -= consecutivePenalty * item.ConsecutiveCorrect

	if IsDue(item, now) {
		p += dueBonus
	}

	if p < 0 {
		return 0
	}
	return p
}

// IsDue reports whether the item's review date has been reached.
func IsDue(item models.Item, now time.Time) bool {
	return !now.Before(item.NextReviewAt)
}
