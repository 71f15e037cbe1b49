// Package mood maps entry text to a sentiment polarity and a three-way
// mood label. Backends implement Classifier; Lexicon is the built-in one.
package mood

import (
	"context"
	"fmt"
	"strings"
)

// Label is the three-way mood of an entry
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Polarity thresholds separating the labels
const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// Result is the outcome of classifying one text
type Result struct {
	Polarity float64 `json:"polarity"`
	Mood     Label   `json:"mood"`
}

// Classifier is any sentiment backend.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// LabelFor maps a polarity to its label: above 0.2 is positive, below -0.2
// negative, anything else neutral.
func LabelFor(polarity float64) Label {
	switch {
	case polarity > PositiveThreshold:
		return Positive
	case polarity < NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// NewResult builds a Result with its label derived from polarity
func NewResult(polarity float64) Result {
	return Result{Polarity: polarity, Mood: LabelFor(polarity)}
}

// Value maps the label onto {-1, 0, 1}. Unknown labels count as neutral.
func (l Label) Value() float64 {
	switch l {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// Valid reports whether l is one of the three known labels
func (l Label) Valid() bool {
	return l == Positive || l == Neutral || l == Negative
}

// ParseLabel parses a stored or user-supplied label
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown mood %q", s)
	}
	return l, nil
}

// Mean returns the average label value of moods, 0 for none.
func Mean(moods []Label) float64 {
	if len(moods) == 0 {
		return 0
	}
	var sum float64
	for _, m := range moods {
		sum += m.Value()
	}
	return sum / float64(len(moods))
}
