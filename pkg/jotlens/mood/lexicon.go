package mood

import (
	"context"
	"strings"
	"unicode"
)

// Lexicon is a deterministic word-list sentiment backend. Each scored word
// contributes its weight; a negator directly before it flips the sign and
// an intensifier scales it. Polarity is the mean over scored words.
type Lexicon struct {
	words        map[string]float64
	negators     map[string]struct{}
	intensifiers map[string]float64
}

// NewLexicon builds a lexicon from the defaults overlaid with overrides.
// A zero weight in overrides removes a default word.
func NewLexicon(overrides map[string]float64) *Lexicon {
	words := make(map[string]float64, len(defaultWords)+len(overrides))
	for w, v := range defaultWords {
		words[w] = v
	}
	for w, v := range overrides {
		w = strings.ToLower(strings.TrimSpace(w))
		if v == 0 {
			delete(words, w)
			continue
		}
		words[w] = clamp(v)
	}
	return &Lexicon{
		words:        words,
		negators:     toSet(defaultNegators),
		intensifiers: defaultIntensifiers,
	}
}

// Classify implements Classifier. It never returns an error.
func (l *Lexicon) Classify(_ context.Context, text string) (Result, error) {
	return NewResult(l.Polarity(text)), nil
}

// Polarity scores text in [-1, 1]; 0 when no lexicon word occurs.
func (l *Lexicon) Polarity(text string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sum float64
	var scored int
	for i, tok := range tokens {
		tok = strings.Trim(tok, "'")
		weight, ok := l.words[tok]
		if !ok {
			continue
		}
		if i > 0 {
			prev := strings.Trim(tokens[i-1], "'")
			if factor, ok := l.intensifiers[prev]; ok {
				weight *= factor
				if i > 1 {
					prev = strings.Trim(tokens[i-2], "'")
				}
			}
			if _, ok := l.negators[prev]; ok {
				weight = -weight * 0.5
			}
		}
		sum += clamp(weight)
		scored++
	}
	if scored == 0 {
		return 0
	}
	return clamp(sum / float64(scored))
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

var defaultNegators = []string{
	"not", "no", "never", "don't", "dont", "didn't", "didnt", "isn't", "isnt",
	"wasn't", "wasnt", "can't", "cant", "couldn't", "couldnt", "won't", "wont",
	"hardly", "barely",
}

var defaultIntensifiers = map[string]float64{
	"very": 1.5, "really": 1.5, "so": 1.3, "extremely": 1.8, "incredibly": 1.8,
	"super": 1.5, "totally": 1.3, "quite": 1.2, "pretty": 1.1,
}

var defaultWords = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "happy": 0.8, "glad": 0.5, "excited": 0.6,
	"amazing": 0.9, "awesome": 0.9, "wonderful": 1.0, "fantastic": 0.9,
	"excellent": 1.0, "love": 0.5, "loved": 0.7, "enjoy": 0.4, "enjoyed": 0.5,
	"fun": 0.3, "calm": 0.3, "relaxed": 0.4, "proud": 0.8, "grateful": 0.6,
	"thankful": 0.6, "productive": 0.5, "motivated": 0.5, "energized": 0.5,
	"nice": 0.6, "best": 1.0, "better": 0.5, "peaceful": 0.5, "hopeful": 0.5,
	"confident": 0.5, "content": 0.3, "satisfied": 0.5, "accomplished": 0.6,
	"success": 0.6, "successful": 0.75, "fine": 0.4, "beautiful": 0.85,
	"smooth": 0.4, "inspired": 0.6, "delighted": 0.8, "cheerful": 0.6,
	// negative
	"bad": -0.7, "sad": -0.5, "angry": -0.5, "upset": -0.6, "tired": -0.4,
	"exhausted": -0.6, "stressed": -0.6, "stress": -0.5, "anxious": -0.5,
	"anxiety": -0.5, "worried": -0.5, "awful": -1.0, "terrible": -1.0,
	"horrible": -1.0, "hate": -0.8, "hated": -0.8, "frustrated": -0.7,
	"frustrating": -0.6, "annoyed": -0.5, "annoying": -0.6, "lonely": -0.5,
	"boring": -0.5, "bored": -0.4, "overwhelmed": -0.6, "worse": -0.6,
	"worst": -1.0, "sick": -0.7, "hurt": -0.5, "difficult": -0.5, "hard": -0.3,
	"problem": -0.3, "problems": -0.3, "failed": -0.5, "failure": -0.6,
	"stuck": -0.4, "miserable": -0.9, "depressed": -0.8, "disappointed": -0.7,
	"lazy": -0.4, "behind": -0.3, "procrastinated": -0.4, "unproductive": -0.5,
}
