package match

import (
	"github.com/pmezard/go-difflib/difflib"
)

// LexicalThreshold is the minimum similarity ratio (exclusive) for a
// candidate to count as a search hit.
const LexicalThreshold = 0.5

// Similarity returns the sequence-matcher ratio between a and b in [0, 1]:
// 2*M/T where M is the number of matching runes under a
// longest-common-block alignment and T is the combined length.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// FilterMatches returns the indices of candidates whose similarity to query
// strictly exceeds threshold, in the original candidate order.
func FilterMatches(query string, candidates []string, threshold float64) []int {
	matches := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if Similarity(query, c) > threshold {
			matches = append(matches, i)
		}
	}
	return matches
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
