package tfidf

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestScoreRequiresTwoDocs(t *testing.T) {
	if got := Score(nil, 1); got != nil {
		t.Errorf("empty corpus: got %v", got)
	}
	if got := Score([][]string{{"alpha", "beta"}}, 1); got != nil {
		t.Errorf("single document: got %v", got)
	}
	if got := ScoreTerms([][]string{{"alpha", "beta"}}, 1, 2); got != nil {
		t.Errorf("single document merged: got %v", got)
	}

	c := NewCorpus(1)
	c.Add([]string{"alpha"})
	if c.Rank() != nil {
		t.Error("Rank on one document should be nil")
	}
}

func TestScoreUnigrams(t *testing.T) {
	docs := [][]string{
		{"a", "b"},
		{"a", "c"},
		{"d"},
	}
	ranked := Score(docs, 1)

	wantOrder := []string{"d", "b", "c", "a"}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("got %d terms, want %d: %+v", len(ranked), len(wantOrder), ranked)
	}
	for i, term := range wantOrder {
		if ranked[i].Term != term {
			t.Errorf("rank %d = %q, want %q", i, ranked[i].Term, term)
		}
	}

	idf1 := math.Log(3.0 / 2.0)
	if got := ranked[0]; math.Abs(got.TFIDF-idf1) > eps || math.Abs(got.TF-1) > eps {
		t.Errorf("d: %+v, want tf=1 tfidf=%v", got, idf1)
	}
	if got := ranked[1]; math.Abs(got.TFIDF-0.5*idf1) > eps {
		t.Errorf("b: tfidf=%v, want %v", got.TFIDF, 0.5*idf1)
	}
	// "a" occurs in 2 of 3 docs: idf = ln(3/3) = 0
	if got := ranked[3]; math.Abs(got.IDF) > eps || math.Abs(got.TFIDF) > eps {
		t.Errorf("a: %+v, want zero idf", got)
	}
}

func TestScoreSmoothingWhenTermInEveryDoc(t *testing.T) {
	docs := [][]string{{"work"}, {"work"}}
	ranked := Score(docs, 1)
	if len(ranked) != 1 {
		t.Fatalf("got %+v", ranked)
	}
	want := math.Log(2.0 / 3.0)
	if math.IsInf(ranked[0].IDF, 0) || math.IsNaN(ranked[0].IDF) {
		t.Fatal("idf must stay finite")
	}
	if math.Abs(ranked[0].IDF-want) > eps {
		t.Errorf("idf = %v, want %v", ranked[0].IDF, want)
	}
}

func TestScoreBigrams(t *testing.T) {
	docs := [][]string{
		{"work", "project", "deadline"},
		{"work", "project", "review"},
		{"garden", "walk"},
	}
	ranked := Score(docs, 2)

	terms := map[string]TermScore{}
	for _, ts := range ranked {
		terms[ts.Term] = ts
	}
	if len(terms) != 4 {
		t.Fatalf("expected 4 distinct bigrams, got %v", ranked)
	}
	wp := terms["work project"]
	// tf 1/2 in two docs, df 2 of 3
	if math.Abs(wp.TF-1.0) > eps || math.Abs(wp.IDF) > eps {
		t.Errorf("work project: %+v", wp)
	}
	// garden walk: tf 1, idf ln(3/2). The deadline/review pair ties on
	// tf 1/2 and idf ln(3/2) and keeps first-appearance order.
	want := []string{"garden walk", "project deadline", "project review", "work project"}
	for i, term := range want {
		if ranked[i].Term != term {
			t.Errorf("rank %d = %q, want %q", i, ranked[i].Term, term)
		}
	}
	if ranked[1].TFIDF != ranked[2].TFIDF {
		t.Errorf("expected tie, got %v and %v", ranked[1].TFIDF, ranked[2].TFIDF)
	}
}

func TestScoreTermsMergesSizes(t *testing.T) {
	docs := [][]string{
		{"x", "y"},
		{"z"},
	}
	ranked := ScoreTerms(docs, 2, 1)

	// Every term has df 1 in a 2-doc corpus, idf = ln(2/2) = 0, so the
	// whole ranking is a tie: bigrams first, then unigrams, each in order.
	want := []string{"x y", "x", "y", "z"}
	if len(ranked) != len(want) {
		t.Fatalf("got %+v", ranked)
	}
	for i := range want {
		if ranked[i].Term != want[i] {
			t.Errorf("rank %d = %q, want %q", i, ranked[i].Term, want[i])
		}
	}
}

func TestTermFrequenciesSumToOne(t *testing.T) {
	docs := [][]string{
		{"morning", "run", "morning", "coffee", "run", "run"},
		{"single"},
		{"a", "b", "c", "a"},
	}
	for _, doc := range docs {
		for _, n := range []int{1, 2} {
			tf := TermFrequencies(doc, n)
			if len(tf) == 0 {
				continue
			}
			var sum float64
			for _, v := range tf {
				sum += v
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("doc %v n=%d: tf sums to %v", doc, n, sum)
			}
		}
	}

	if tf := TermFrequencies(nil, 1); len(tf) != 0 {
		t.Errorf("empty doc should have no frequencies, got %v", tf)
	}
}

func TestEmptyDocumentsCountTowardD(t *testing.T) {
	docs := [][]string{{}, {"focus"}, {}}
	ranked := Score(docs, 1)
	if len(ranked) != 1 {
		t.Fatalf("got %+v", ranked)
	}
	want := math.Log(3.0 / 2.0)
	if math.Abs(ranked[0].TFIDF-want) > eps {
		t.Errorf("tfidf = %v, want %v", ranked[0].TFIDF, want)
	}
}

func TestTop(t *testing.T) {
	ranked := []TermScore{{Term: "a"}, {Term: "b"}, {Term: "c"}}
	if got := Top(ranked, 2); len(got) != 2 {
		t.Errorf("Top(2) len = %d", len(got))
	}
	if got := Top(ranked, 0); len(got) != 3 {
		t.Errorf("Top(0) should not truncate")
	}
}

func TestBigramTFUsesGramCount(t *testing.T) {
	// three tokens, two bigrams: each bigram is half the document
	tf := TermFrequencies([]string{"work", "project", "deadline"}, 2)
	for _, term := range []string{"work project", "project deadline"} {
		if math.Abs(tf[term]-0.5) > 1e-9 {
			t.Errorf("tf[%q] = %v, want 0.5", term, tf[term])
		}
	}
}
