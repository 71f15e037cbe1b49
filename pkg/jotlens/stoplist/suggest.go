package stoplist

import (
	"math"
	"sort"
)

// Stats holds document-frequency figures for one token across a corpus
type Stats struct {
	Token     string
	DF        int     // documents containing the token
	DFPercent float64 // 100 * DF / docs
	IDF       float64 // ln(docs / (1 + DF))
}

// ComputeStats counts, for each token, how many documents contain it.
// Results are sorted by DF descending, then token.
func ComputeStats(docs [][]string) []Stats {
	if len(docs) == 0 {
		return nil
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(docs))
	out := make([]Stats, 0, len(df))
	for tok, d := range df {
		out = append(out, Stats{
			Token:     tok,
			DF:        d,
			DFPercent: 100 * float64(d) / n,
			IDF:       math.Log(n / (1 + float64(d))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DF != out[j].DF {
			return out[i].DF > out[j].DF
		}
		return out[i].Token < out[j].Token
	})
	return out
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent float64 // e.g. 60: appears in 60% of entries
	MinDF     int     // ignore tokens seen in fewer entries than this
}

// DefaultThresholds returns the thresholds used when none are given
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 60, MinDF: 5}
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token     string  `json:"token"`
	DF        int     `json:"df"`
	DFPercent float64 `json:"df_percent"`
	IDF       float64 `json:"idf"`
}

// SuggestCandidates returns tokens that occur in so many documents they
// carry no topical signal and are not already stop words. Order follows
// stats.
func (m *Manager) SuggestCandidates(stats []Stats, th Thresholds) []Candidate {
	d := DefaultThresholds()
	if th.DFPercent <= 0 {
		th.DFPercent = d.DFPercent
	}
	if th.MinDF <= 0 {
		th.MinDF = d.MinDF
	}

	var out []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue // already a stopword
		}
		if s.DF < th.MinDF || s.DFPercent < th.DFPercent {
			continue
		}
		out = append(out, Candidate{Token: s.Token, DF: s.DF, DFPercent: s.DFPercent, IDF: s.IDF})
	}
	return out
}
