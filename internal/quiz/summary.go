package quiz

import (
	"math"

	"github.com/vytor/mriflash/internal/models"
)

type Feedback string

const (
	FeedbackOutstanding  Feedback = "Outstanding! You have excellent mastery of T1/T2 differentiation."
	FeedbackGreat        Feedback = "Great job! You have a solid understanding of MRI weighting."
	FeedbackGood         Feedback = "Good progress! Keep practicing to strengthen your recognition skills."
	FeedbackKeepLearning Feedback = "Keep learning! Review the key differentiators and try again."
)

type CategoryBreakdown struct {
	Category models.Category `json:"category"`
	Correct  int             `json:"correct"`
	Total    int             `json:"total"`
	// Accuracy is a whole percentage, 0 when Total is 0.
	Accuracy int `json:"accuracy"`
}

type Summary struct {
	Score      int                   `json:"score"`
	Total      int                   `json:"total"`
	Percentage float64               `json:"percentage"`
	Feedback   Feedback              `json:"feedback"`
	Breakdown  []CategoryBreakdown   `json:"breakdown"`
	Missed     []models.AnswerRecord `json:"missed"`
}

// Summarize computes the results view for a finished or abandoned session.
func Summarize(score, total int, answers []models.AnswerRecord) Summary {
	sum := Summary{
		Score:  score,
		Total:  total,
		Missed: []models.AnswerRecord{},
	}
	if total > 0 {
		sum.Percentage = math.Round(float64(score)*1000/float64(total)) / 10
	}
	sum.Feedback = feedbackFor(sum.Percentage)

	for _, c := range models.Categories {
		b := CategoryBreakdown{Category: c}
		for _, a := range answers {
			if a.CorrectAnswer != c {
				continue
			}
			b.Total++
			if a.Correct {
				b.Correct++
			}
		}
		if b.Total > 0 {
			b.Accuracy = int(math.Round(float64(b.Correct) * 100 / float64(b.Total)))
		}
		sum.Breakdown = append(sum.Breakdown, b)
	}

	for _, a := range answers {
		if !a.Correct {
			sum.Missed = append(sum.Missed, a)
		}
	}
	return sum
}

func feedbackFor(pct float64) Feedback {
	switch {
	case pct >= 90:
		return FeedbackOutstanding
	case pct >= 75:
		return FeedbackGreat
	case pct >= 60:
		return FeedbackGood
	default:
		return FeedbackKeepLearning
	}
}

type AttemptStatus string

const (
	StatusEventuallyCorrect AttemptStatus = "eventually-correct"
	StatusRepeatedFailure   AttemptStatus = "repeated-failure"
)

// AttemptGroup collects every answer given for one image.
type AttemptGroup struct {
	ImageID        string                `json:"image_id"`
	Image          *models.Image         `json:"image"`
	Attempts       []models.AnswerRecord `json:"attempts"`
	Status         AttemptStatus         `json:"status"`
	IncorrectCount int                   `json:"incorrect_count"`
	TotalCount     int                   `json:"total_count"`
}

// GroupAnswers groups answers by image in the order images were first
// answered. images is used to attach the image; unknown IDs get nil.
func GroupAnswers(answers []models.AnswerRecord, images []models.Image) []AttemptGroup {
	byID := make(map[string]models.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	index := make(map[string]int)
	var groups []AttemptGroup
	for _, a := range answers {
		i, ok := index[a.ImageID]
		if !ok {
			i = len(groups)
			index[a.ImageID] = i
			g := AttemptGroup{ImageID: a.ImageID}
			if img, found := byID[a.ImageID]; found {
				g.Image = &img
			}
			groups = append(groups, g)
		}
		groups[i].Attempts = append(groups[i].Attempts, a)
	}

	for i := range groups {
		g := &groups[i]
		hasCorrect := false
		for _, a := range g.Attempts {
			if a.Correct {
				hasCorrect = true
			} else {
				g.IncorrectCount++
			}
		}
		g.TotalCount = len(g.Attempts)
		g.Status = StatusRepeatedFailure
		if g.IncorrectCount > 0 && hasCorrect {
			g.Status = StatusEventuallyCorrect
		}
	}
	return groups
}
