package ingest

import "strings"

// NGrams returns every contiguous window of n tokens joined by a single
// space, in order. Fewer than n tokens yields an empty result.
func NGrams(tokens []string, n int) []string {
	if n < 1 || len(tokens) < n {
		return nil
	}
	if n == 1 {
		out := make([]string, len(tokens))
		copy(out, tokens)
		return out
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

// Bigrams is shorthand for NGrams(tokens, 2)
func Bigrams(tokens []string) []string {
	return NGrams(tokens, 2)
}
