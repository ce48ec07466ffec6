// Package explain holds the teaching content shown after each answer.
package explain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/vytor/mriflash/internal/models"
)

// KeyDifferentiator is the single cue that separates the two weightings.
const KeyDifferentiator = "Look at the ventricles (CSF spaces) - DARK in T1, BRIGHT in T2"

type Explanation struct {
	Category          models.Category `json:"category"`
	Title             string          `json:"title"`
	Characteristics   []string        `json:"characteristics"`
	MemoryAid         string          `json:"memory_aid"`
	KeyDifferentiator string          `json:"key_differentiator"`
	Feedback          string          `json:"feedback"`
}

// For returns the explanation for an image of category c, with feedback
// worded for a correct or incorrect answer.
func For(c models.Category, correct bool) Explanation {
	if c == models.CategoryT1 {
		e := Explanation{
			Category: c,
			Title:    "T1-Weighted Image",
			Characteristics: []string{
				"CSF (cerebrospinal fluid) appears DARK",
				"Fat appears BRIGHT",
				"White matter appears brighter than gray matter",
				"Good for anatomical detail",
			},
			MemoryAid:         "T1 = ONE anatomy scan - fat bright, water dark",
			KeyDifferentiator: KeyDifferentiator,
			Feedback:          "This is a T1 image. Remember: T1 has DARK ventricles (CSF), while T2 has BRIGHT ventricles.",
		}
		if correct {
			e.Feedback = "Correct! T1 images show dark CSF and bright fat, excellent for anatomy."
		}
		return e
	}

	e := Explanation{
		Category: models.CategoryT2,
		Title:    "T2-Weighted Image",
		Characteristics: []string{
			"CSF (cerebrospinal fluid) appears BRIGHT",
			"Fat appears less bright than in T1",
			"Gray matter appears brighter than white matter",
			"Good for detecting pathology and edema",
		},
		MemoryAid:         "T2 = TWO = H2O - water and fluids are bright",
		KeyDifferentiator: KeyDifferentiator,
		Feedback:          "This is a T2 image. Remember: T2 has BRIGHT ventricles (CSF), while T1 has DARK ventricles.",
	}
	if correct {
		e.Feedback = "Correct! T2 images show bright CSF and are excellent for detecting pathology."
	}
	return e
}

// Markdown renders the explanation as a markdown document.
func (e Explanation) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", e.Title)
	fmt.Fprintf(&sb, "%s\n\n", e.Feedback)
	for _, c := range e.Characteristics {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	fmt.Fprintf(&sb, "\n**Memory aid:** %s\n\n", e.MemoryAid)
	fmt.Fprintf(&sb, "**Key differentiator:** %s\n", e.KeyDifferentiator)
	return sb.String()
}

// HTML renders the markdown form to HTML.
func (e Explanation) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(e.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return buf.String(), nil
}
