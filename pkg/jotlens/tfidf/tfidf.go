// Package tfidf ranks unigrams and bigrams of a corpus by aggregate
// TF-IDF weight.
//
//	tf(t, d)  = count(t in d) / len(grams(d))
//	idf(t)    = ln(D / (1 + df(t)))
//	tfidf(t)  = Σ_d tf(t, d) * idf(t)
//
// The +1 smoothing keeps idf finite when a term occurs in every document;
// such terms get a negative weight and sink to the bottom of the ranking.
package tfidf

import (
	"math"
	"sort"

	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
)

// MinDocs is the smallest corpus TF-IDF is defined on.
const MinDocs = 2

// TermScore is the corpus-level weight of one term.
type TermScore struct {
	Term  string  `json:"term"`
	TF    float64 `json:"tf"` // sum of per-document tf
	IDF   float64 `json:"idf"`
	TFIDF float64 `json:"tfidf"`
}

// Corpus accumulates per-document term frequencies for a fixed set of
// n-gram sizes.
type Corpus struct {
	sizes     []int
	docs      int
	tfSum     map[string]float64
	df        map[string]int
	seen      map[string]struct{}
	firstSeen [][]string // per size, terms in first-appearance order
}

// NewCorpus creates an empty corpus tracking the given n-gram sizes.
// With no sizes it tracks unigrams.
func NewCorpus(sizes ...int) *Corpus {
	if len(sizes) == 0 {
		sizes = []int{1}
	}
	return &Corpus{
		sizes:     sizes,
		tfSum:     make(map[string]float64),
		df:        make(map[string]int),
		seen:      make(map[string]struct{}),
		firstSeen: make([][]string, len(sizes)),
	}
}

// Add consumes one document's normalized tokens.
func (c *Corpus) Add(tokens []string) {
	c.docs++
	for i, n := range c.sizes {
		grams := ingest.NGrams(tokens, n)
		for _, term := range grams {
			if _, ok := c.seen[term]; !ok {
				c.seen[term] = struct{}{}
				c.firstSeen[i] = append(c.firstSeen[i], term)
			}
		}
		for term, tf := range frequencies(grams) {
			c.df[term]++
			c.tfSum[term] += tf
		}
	}
}

// Docs returns the number of documents added.
func (c *Corpus) Docs() int {
	return c.docs
}

// IDF returns ln(D / (1 + df)) for a term.
func (c *Corpus) IDF(term string) float64 {
	if c.docs == 0 {
		return 0
	}
	return math.Log(float64(c.docs) / (1 + float64(c.df[term])))
}

// Rank returns every term sorted by descending TF-IDF. Ties keep the order
// of the sizes passed to NewCorpus, then first appearance in the corpus.
// Corpora with fewer than MinDocs documents rank nothing.
func (c *Corpus) Rank() []TermScore {
	if c.docs < MinDocs {
		return nil
	}
	var out []TermScore
	for _, terms := range c.firstSeen {
		for _, term := range terms {
			idf := c.IDF(term)
			tf := c.tfSum[term]
			out = append(out, TermScore{
				Term:  term,
				TF:    tf,
				IDF:   idf,
				TFIDF: tf * idf,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TFIDF > out[j].TFIDF
	})
	return out
}

// Score ranks the n-grams of docs. It is the one-shot form of
// NewCorpus(n) followed by Add for every document and Rank.
func Score(docs [][]string, n int) []TermScore {
	return ScoreTerms(docs, n)
}

// ScoreTerms ranks several n-gram sizes together in one list.
func ScoreTerms(docs [][]string, sizes ...int) []TermScore {
	if len(docs) < MinDocs {
		return nil
	}
	c := NewCorpus(sizes...)
	for _, d := range docs {
		c.Add(d)
	}
	return c.Rank()
}

// TermFrequencies returns tf(t, d) for every n-gram of one document.
// The values sum to 1 unless the document has no n-grams.
func TermFrequencies(tokens []string, n int) map[string]float64 {
	return frequencies(ingest.NGrams(tokens, n))
}

func frequencies(grams []string) map[string]float64 {
	out := make(map[string]float64, len(grams))
	if len(grams) == 0 {
		return out
	}
	counts := make(map[string]int, len(grams))
	for _, g := range grams {
		counts[g]++
	}
	total := float64(len(grams))
	for g, cnt := range counts {
		out[g] = float64(cnt) / total
	}
	return out
}

// Top returns at most k terms of a ranking.
func Top(ranked []TermScore, k int) []TermScore {
	if k > 0 && len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
